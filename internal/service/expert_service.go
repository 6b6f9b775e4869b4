package service

import (
	"context"
	"strings"

	"github.com/spec-kit/forum-service/internal/domain"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

// ExpertBackend is the part of the backend API behind the expert directory.
type ExpertBackend interface {
	ListExperts(ctx context.Context, token, category string) ([]domain.User, error)
	GetUser(ctx context.Context, token, userID string) (*domain.User, error)
}

// ExpertService serves the public expert directory.
type ExpertService struct {
	backend ExpertBackend
}

// NewExpertService constructs the service.
func NewExpertService(backend ExpertBackend) *ExpertService {
	return &ExpertService{backend: backend}
}

// List returns expert profiles, optionally limited to category.
func (s *ExpertService) List(ctx context.Context, token, category string) ([]domain.User, error) {
	users, err := s.backend.ListExperts(ctx, token, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	experts := make([]domain.User, 0, len(users))
	for _, user := range users {
		if user.IsExpertProfile() {
			experts = append(experts, user)
		}
	}
	return experts, nil
}

// Profile returns one expert. Accounts without an expert profile are reported
// as not found.
func (s *ExpertService) Profile(ctx context.Context, token, userID string) (*domain.User, error) {
	user, err := s.backend.GetUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsExpertProfile() {
		return nil, apperrors.NewNotFound("expert", map[string]any{"id": userID})
	}
	return user, nil
}
