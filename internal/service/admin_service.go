package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/backend"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/repository"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminBackend is the part of the backend API used by administrators.
type AdminBackend interface {
	ListUsers(ctx context.Context, token string, page, limit int) (*backend.UserPage, error)
	GetUser(ctx context.Context, token, userID string) (*domain.User, error)
	UpdateUserRole(ctx context.Context, token, userID string, role domain.Role) (*domain.User, error)
}

// AdminService exposes user management and the moderation log.
type AdminService struct {
	backend    AdminBackend
	log        repository.ModerationLogRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AdminDependencies bundles collaborators for the admin service. Log may be
// nil when Postgres is not configured.
type AdminDependencies struct {
	Backend    AdminBackend
	Log        repository.ModerationLogRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		backend:    deps.Backend,
		log:        deps.Log,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListUsers returns a page of accounts.
func (s *AdminService) ListUsers(ctx context.Context, viewer *domain.Viewer, token string, page, limit int) (*backend.UserPage, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.backend.ListUsers(ctx, token, page, limit)
}

// ChangeRole assigns a new role to another account.
func (s *AdminService) ChangeRole(ctx context.Context, viewer *domain.Viewer, token, userID, rawRole string) (*domain.User, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	if userID == viewer.ID {
		return nil, apperrors.NewForbidden("you cannot change your own role")
	}
	role := domain.ParseRole(rawRole)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role",
			map[string]any{"fields": map[string]any{"role": "unknown role"}})
	}

	current, err := s.backend.GetUser(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	previous := current.Role

	user, err := s.backend.UpdateUserRole(ctx, token, userID, role)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		event := events.Event{
			Type:       events.EventUserRoleChanged,
			TargetType: domain.TargetUser,
			TargetID:   userID,
			Actor:      events.ActorOf(viewer),
			Payload:    events.RoleChangedPayload{OldRole: previous, NewRole: role},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return user, nil
}

// ModerationLog lists recorded moderation actions, optionally for one target.
func (s *AdminService) ModerationLog(ctx context.Context, viewer *domain.Viewer, targetType domain.TargetType, targetID string, limit int) ([]domain.ModerationEntry, error) {
	if err := requireAdmin(viewer); err != nil {
		return nil, err
	}
	if s.log == nil {
		return []domain.ModerationEntry{}, nil
	}
	var (
		entries []domain.ModerationEntry
		err     error
	)
	if targetID != "" {
		entries, err = s.log.ListByTarget(ctx, targetType, targetID)
	} else {
		if limit <= 0 || limit > maxPageSize {
			limit = defaultPageSize
		}
		entries, err = s.log.ListRecent(ctx, limit)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func requireAdmin(viewer *domain.Viewer) error {
	if !viewer.Authenticated() {
		return apperrors.NewUnauthorized("sign in required")
	}
	if !viewer.Role.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
