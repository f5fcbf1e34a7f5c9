package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	"github.com/wander-api/wander/pkg/apperr"
	"github.com/wander-api/wander/pkg/helpers"
)

// UserService covers profile reads and edits plus admin user management.
// Password mutations are out of its reach; those belong to AuthService.
type UserService struct {
	Users     repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewUserService(users repository.UserRepository, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, GCS: gcs, GCSBucket: gcsBucket, Logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindDependency, "profile unavailable", err)
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile edits name and email only.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = strings.TrimSpace(in.Name)
	}
	if in.Email != "" {
		u.Email = NormalizeEmail(in.Email)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.KindConflict, "email already in use")
		}
		return nil, apperr.Wrap(apperr.KindDependency, "could not update profile", err)
	}
	return u, nil
}

// Deactivate soft-deletes the account; the record stays in the store but is
// excluded from every standard lookup from here on.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	if err := s.Users.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Wrap(apperr.KindDependency, "could not deactivate account", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": userID}).Info("account deactivated")
	return nil
}

// UploadPhoto stores a profile image in GCS and records its public URL.
func (s *UserService) UploadPhoto(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, apperr.New(apperr.KindDependency, "photo storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("photos", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "could not store photo", err)
	}
	u.Photo = url
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "could not update profile", err)
	}
	return u, nil
}

// Admin operations.

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "could not list users", err)
	}
	return users, nil
}

type AdminUpdateInput struct {
	Name  string
	Email string
	Role  entity.Role
}

// AdminUpdate edits another user's profile fields and role. Passwords are
// not editable through this path either.
func (s *UserService) AdminUpdate(ctx context.Context, userID string, in AdminUpdateInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = strings.TrimSpace(in.Name)
	}
	if in.Email != "" {
		u.Email = NormalizeEmail(in.Email)
	}
	if in.Role != "" {
		if !in.Role.Valid() {
			return nil, apperr.New(apperr.KindValidation, "unknown role")
		}
		u.Role = in.Role
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.New(apperr.KindConflict, "email already in use")
		}
		return nil, apperr.Wrap(apperr.KindDependency, "could not update user", err)
	}
	return u, nil
}
