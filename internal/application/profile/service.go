package profile

import (
	"context"
	"log/slog"

	"github.com/go-account-api/internal/application/avatar"
	"github.com/go-account-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName   = "name"
	fieldPhone  = "phone"
	fieldAvatar = "avatar"
)

type Service interface {
	SelectProfile(ctx context.Context, username string) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, upload *avatar.Upload) error
	DeleteAccount(ctx context.Context, userID string) error
}

type accountStore interface {
	Get(ctx context.Context, userID string) (*domain.Account, error)
	ProfilesByUsername(ctx context.Context, username string) ([]domain.Profile, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
}

type service struct {
	repo    accountStore
	avatars avatar.Service
}

func NewService(repo accountStore, avatars avatar.Service) Service {
	return &service{repo: repo, avatars: avatars}
}

func (s *service) SelectProfile(ctx context.Context, username string) ([]domain.Profile, error) {
	return s.repo.ProfilesByUsername(ctx, username)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, upload *avatar.Upload) error {
	acc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	newKey := ""
	if upload != nil {
		newKey, err = s.avatars.Put(ctx, userID, *upload)
		if err != nil {
			return err
		}
		updates[fieldAvatar] = newKey
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		if newKey != "" {
			s.discardAvatar(ctx, userID, newKey)
		}
		return err
	}
	if newKey != "" && acc.Avatar != "" && acc.Avatar != newKey {
		s.discardAvatar(ctx, userID, acc.Avatar)
	}
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, userID string) error {
	acc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if acc.Avatar != "" {
		s.discardAvatar(ctx, userID, acc.Avatar)
	}
	return nil
}

// discardAvatar removes an object no account points at. Failure leaves an
// orphan in the bucket and is only logged.
func (s *service) discardAvatar(ctx context.Context, userID, key string) {
	if err := s.avatars.Remove(ctx, key); err != nil {
		slog.Warn("avatar cleanup failed", "user_id", userID, "key", key, "err", err)
	}
}
