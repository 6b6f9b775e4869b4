package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/profile"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

const usernameTakenMessage = "username already taken"

// ProfileBackend is the part of the backend API used for profile edits.
type ProfileBackend interface {
	UpdateProfile(ctx context.Context, token string, update profile.Update) (*domain.User, error)
}

// ProfileService validates and forwards profile edits.
type ProfileService struct {
	backend    ProfileBackend
	validator  *profile.Validator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(backend ProfileBackend, validator *profile.Validator, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	if validator == nil {
		validator = profile.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{backend: backend, validator: validator, dispatcher: dispatcher, logger: logger}
}

// Update validates in and, when every field passes, saves it for the viewer.
// Validation failures carry the full field error map in details.fields.
func (s *ProfileService) Update(ctx context.Context, viewer *domain.Viewer, token string, in profile.Input) (*domain.User, error) {
	if !viewer.Authenticated() {
		return nil, apperrors.NewUnauthorized("sign in required")
	}

	update, fieldErrs := s.validator.Validate(in)
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("profile validation failed", fieldErrs.Details())
	}

	user, err := s.backend.UpdateProfile(ctx, token, *update)
	if err != nil {
		if apperrors.IsCode(err, "CONFLICT") {
			return nil, apperrors.NewValidationError("profile validation failed",
				profile.FieldErrors{"username": usernameTakenMessage}.Details())
		}
		return nil, err
	}

	if s.dispatcher != nil {
		event := events.Event{
			Type:       events.EventProfileUpdated,
			TargetType: domain.TargetUser,
			TargetID:   viewer.ID,
			Actor:      events.ActorOf(viewer),
			Payload:    events.ProfileUpdatedPayload{Username: update.Username},
		}
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return user, nil
}
