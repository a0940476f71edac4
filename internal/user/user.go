package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/storage"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

//go:generate mockgen -source=user.go -destination=repository_mock.go -package=user
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

type Service struct {
	repo         Repository
	uploads      storage.Uploader
	maxImageSize int64
}

func NewService(repo Repository, uploads storage.Uploader, maxImageSize int64) *Service {
	return &Service{repo: repo, uploads: uploads, maxImageSize: maxImageSize}
}

func (s *Service) Current(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

type UpdateParams struct {
	Name           *string
	ProfilePicture []byte
}

// Update changes the user's name and, when image bytes are given, replaces the profile picture.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		u.Name = strings.TrimSpace(*params.Name)
	}

	if len(params.ProfilePicture) > 0 {
		contentType, err := storage.SniffImage(params.ProfilePicture, s.maxImageSize)
		if err != nil {
			return nil, err
		}

		url, err := s.uploads.Upload(ctx, storage.ObjectName("profile-pictures", id, contentType), contentType, params.ProfilePicture)
		if err != nil {
			return nil, fmt.Errorf("uploading profile picture: %w", err)
		}

		u.ProfilePicture = url
	}

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}
