package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyRule = errors.New("pattern and category are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCategory returns the category of the longest pattern contained in title, or "" when none match.
	FindCategory(ctx context.Context, userID uuid.UUID, title string) (string, error)
	SaveRule(ctx context.Context, userID uuid.UUID, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the learned category for a transaction title.
// Returns empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, userID, title)
}

// Learn remembers that titles containing pattern belong to category. A later rule for the same pattern replaces it.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern, category string) error {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return ErrEmptyRule
	}

	return s.repo.SaveRule(ctx, userID, pattern, category)
}
