package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type UserService struct {
	users domain.UserRepository
}

func NewUserService(r domain.UserRepository) *UserService {
	return &UserService{users: r}
}

// EnsureUser creates the user on first sight, named after the local part of
// the email. An existing user is returned unchanged.
func (s *UserService) EnsureUser(ctx context.Context, id, email string) (domain.User, bool, error) {
	id, email = strings.TrimSpace(id), strings.TrimSpace(email)
	if err := requireUserID(id); err != nil {
		return domain.User{}, false, err
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.User{}, false, domain.Invalid("invalid email %q", email)
	}

	created, err := s.users.CreateUserIfMissing(ctx, domain.User{
		ID:       id,
		Email:    email,
		Username: domain.UsernameFromEmail(email),
		Role:     domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, false, storeErr("create user", err)
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, false, storeErr("get user", err)
	}
	if created {
		log.Info().Str("user_id", id).Msg("user created")
	}
	return u, created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	if err := requireUserID(id); err != nil {
		return domain.User{}, err
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, storeErr("get user", err)
	}
	return u, nil
}

// UpdateUsername renames a user. Only the user themselves may do it.
func (s *UserService) UpdateUsername(ctx context.Context, actorID, id, username string) (domain.User, error) {
	if err := requireUserID(id); err != nil {
		return domain.User{}, err
	}
	if actorID != id {
		return domain.User{}, fmt.Errorf("%w: users may only change their own username", domain.ErrForbidden)
	}
	username = strings.TrimSpace(username)
	if err := domain.ValidateUsername(username); err != nil {
		return domain.User{}, err
	}
	u, err := s.users.UpdateUsername(ctx, id, username)
	if err != nil {
		return domain.User{}, storeErr("update username", err)
	}
	return u, nil
}

// SetRole is an operator action; there is no HTTP route for it.
func (s *UserService) SetRole(ctx context.Context, id, role string) (domain.User, error) {
	if err := requireUserID(id); err != nil {
		return domain.User{}, err
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.SetRole(ctx, id, r); err != nil {
		return domain.User{}, storeErr("set role", err)
	}
	log.Info().Str("user_id", id).Str("role", string(r)).Msg("role changed")
	return s.GetUser(ctx, id)
}
