package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/repository"
)

// AuditService records moderation-relevant events in the local moderation log.
type AuditService struct {
	dispatcher events.Dispatcher
	log        repository.ModerationLogRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, log repository.ModerationLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, log: log, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil || a.log == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventAnswerModerated,
		events.EventAnswerDeleted,
		events.EventQuestionDeleted,
		events.EventQuestionReported,
		events.EventCommentDeleted,
		events.EventUserRoleChanged,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	action, ok := actionFor(event)
	if !ok {
		return nil
	}

	entry := &domain.ModerationEntry{
		ActorID:    event.Actor.UserID,
		ActorRole:  event.Actor.Role,
		Action:     action,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
		Details:    detailsOf(event),
	}
	if err := a.log.Create(ctx, entry); err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	a.logger.Debug("moderation entry recorded",
		zap.String("entry_id", entry.ID),
		zap.String("action", string(action)),
		zap.String("target_id", entry.TargetID))
	return nil
}

func actionFor(event events.Event) (domain.ModerationAction, bool) {
	switch event.Type {
	case events.EventAnswerModerated:
		if payload, ok := event.Payload.(events.AnswerPayload); ok && payload.Approved != nil && *payload.Approved {
			return domain.ActionAnswerApproved, true
		}
		return domain.ActionAnswerRejected, true
	case events.EventAnswerDeleted:
		return domain.ActionAnswerDeleted, true
	case events.EventQuestionDeleted:
		return domain.ActionQuestionDeleted, true
	case events.EventQuestionReported:
		return domain.ActionQuestionReport, true
	case events.EventCommentDeleted:
		return domain.ActionCommentDeleted, true
	case events.EventUserRoleChanged:
		return domain.ActionRoleChanged, true
	}
	return "", false
}

// detailsOf flattens the event payload into a JSON object.
func detailsOf(event events.Event) map[string]any {
	details := map[string]any{"event_id": event.ID}
	if event.QuestionID != "" {
		details["question_id"] = event.QuestionID
	}
	if event.Payload == nil {
		return details
	}
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return details
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return details
	}
	for k, v := range payload {
		details[k] = v
	}
	return details
}
