package app

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"hotel_booking/internal/domain"
)

const (
	maxImageBytes     = 5 << 20
	sharedReadTimeout = 10 * time.Second
)

func hotelKey(id int64) string   { return fmt.Sprintf("hotel:%d", id) }
func reviewsKey(id int64) string { return fmt.Sprintf("reviews:%d", id) }

// ImageUpload is the raw image attached to a hotel registration.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        []byte
}

type CatalogService struct {
	hotels   domain.HotelRepository
	users    domain.UserRepository
	ratings  *RatingAggregator
	cache    domain.Cache
	objects  domain.ObjectStore
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewCatalogService wires the hotel read/write paths. objects may be nil, in
// which case registrations with an image fail.
func NewCatalogService(s domain.Store, ratings *RatingAggregator, c domain.Cache, objects domain.ObjectStore, ttl time.Duration) *CatalogService {
	return &CatalogService{hotels: s, users: s, ratings: ratings, cache: c, objects: objects, cacheTTL: ttl}
}

func (s *CatalogService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	if err := requireHotelID(id); err != nil {
		return domain.Hotel{}, err
	}
	key := hotelKey(id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}

	// concurrent misses for the same hotel share one store read
	v, err, _ := s.group.Do(key, func() (any, error) {
		// shared by every waiter; detached from the first caller's cancellation
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()
		h, err := s.hotels.GetHotel(ctx, id)
		if err != nil {
			return domain.Hotel{}, storeErr("get hotel", err)
		}
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
		return h, nil
	})
	if err != nil {
		return domain.Hotel{}, err
	}
	return v.(domain.Hotel), nil
}

// ViewHotel is the detail page read: the rating is recomputed first so the
// page never shows drifted counters. Recompute failures are logged only.
func (s *CatalogService) ViewHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	if err := requireHotelID(id); err != nil {
		return domain.Hotel{}, err
	}
	if _, _, err := s.RecomputeRating(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("rating recompute on view failed")
	}
	return s.GetHotel(ctx, id)
}

func (s *CatalogService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.hotels.ListHotels(ctx)
	if err != nil {
		return nil, storeErr("list hotels", err)
	}
	return hs, nil
}

// RecomputeRating rebuilds the hotel's counters from its reviews and drops the
// cached copy when they changed.
func (s *CatalogService) RecomputeRating(ctx context.Context, id int64) (domain.RatingAggregate, bool, error) {
	if err := requireHotelID(id); err != nil {
		return domain.RatingAggregate{}, false, err
	}
	agg, changed, err := s.ratings.Recompute(ctx, id)
	if err != nil {
		return domain.RatingAggregate{}, false, err
	}
	if changed {
		_ = s.cache.Del(ctx, hotelKey(id))
	}
	return agg, changed, nil
}

// RegisterHotel stores a new listing on behalf of ownerID. The image, when
// present, is uploaded first and its public URL stored with the hotel.
func (s *CatalogService) RegisterHotel(ctx context.Context, ownerID string, d domain.HotelDraft, img *ImageUpload) (domain.Hotel, error) {
	if err := requireUserID(ownerID); err != nil {
		return domain.Hotel{}, err
	}
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	if err := validate.Struct(d); err != nil {
		return domain.Hotel{}, validationErr(err)
	}

	owner, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		return domain.Hotel{}, storeErr("get user", err)
	}
	if !owner.Role.CanRegisterHotels() {
		return domain.Hotel{}, fmt.Errorf("%w: role %q may not register hotels", domain.ErrForbidden, owner.Role)
	}

	if img != nil && len(img.Body) > 0 {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return domain.Hotel{}, err
		}
		d.ImageURL = &url
	}

	h, err := s.hotels.CreateHotel(ctx, d)
	if err != nil {
		return domain.Hotel{}, storeErr("create hotel", err)
	}
	log.Info().Int64("hotel_id", h.ID).Str("owner", ownerID).Msg("hotel registered")
	return h, nil
}

func (s *CatalogService) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	if len(img.Body) > maxImageBytes {
		return "", domain.Invalid("image exceeds %d bytes", maxImageBytes)
	}
	ct := img.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(img.Filename))
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", domain.Invalid("unsupported image type %q", ct)
	}
	if s.objects == nil {
		return "", domain.Dependency("upload image", errors.New("object store is not configured"))
	}

	key := "hotels/" + uuid.NewString() + imageExt(img.Filename, ct)
	url, err := s.objects.Put(ctx, key, ct, img.Body)
	if err != nil {
		return "", storeErr("upload image", err)
	}
	return url, nil
}

func imageExt(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
