package app

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

var validate = validator.New()

// storeErr passes classified errors through and wraps anything else as a
// dependency failure, logging the detail that callers will not see.
func storeErr(op string, err error) error {
	if err == nil || domain.IsClassified(err) {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("dependency failure")
	return domain.Dependency(op, err)
}

// validationErr turns validator output into a single validation error naming
// the first failing field.
func validationErr(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		if fe.Param() != "" {
			return domain.Invalid("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return domain.Invalid("%s failed %s", fe.Field(), fe.Tag())
	}
	return domain.Invalid("%v", err)
}

func requireUserID(userID string) error {
	if userID == "" {
		return domain.Invalid("userId is required")
	}
	return nil
}

func requireHotelID(id int64) error {
	if id <= 0 {
		return domain.Invalid("invalid hotel id %d", id)
	}
	return nil
}
