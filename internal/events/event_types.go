package events

import (
	"time"

	"github.com/spec-kit/forum-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAnswerCreated    EventType = "answer_created"
	EventAnswerUpdated    EventType = "answer_updated"
	EventAnswerDeleted    EventType = "answer_deleted"
	EventAnswerModerated  EventType = "answer_moderated"
	EventAnswerAccepted   EventType = "answer_accepted"
	EventCommentCreated   EventType = "comment_created"
	EventCommentDeleted   EventType = "comment_deleted"
	EventQuestionDeleted  EventType = "question_deleted"
	EventQuestionReported EventType = "question_reported"
	EventProfileUpdated   EventType = "profile_updated"
	EventUserRoleChanged  EventType = "user_role_changed"
)

// AllTypes lists every event type in a stable order.
var AllTypes = []EventType{
	EventAnswerCreated,
	EventAnswerUpdated,
	EventAnswerDeleted,
	EventAnswerModerated,
	EventAnswerAccepted,
	EventCommentCreated,
	EventCommentDeleted,
	EventQuestionDeleted,
	EventQuestionReported,
	EventProfileUpdated,
	EventUserRoleChanged,
}

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// ActorOf builds an Actor from a viewer; guests yield the zero Actor.
func ActorOf(viewer *domain.Viewer) Actor {
	if viewer == nil {
		return Actor{}
	}
	return Actor{UserID: viewer.ID, Role: viewer.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	QuestionID string            `json:"question_id,omitempty"`
	TargetType domain.TargetType `json:"target_type"`
	TargetID   string            `json:"target_id"`
	Actor      Actor             `json:"actor"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    interface{}       `json:"payload,omitempty"`
}

// AnswerPayload accompanies answer_* events.
type AnswerPayload struct {
	ExpertID    string `json:"expert_id,omitempty"`
	Approved    *bool  `json:"approved,omitempty"`
	BodyPreview string `json:"body_preview,omitempty"`
}

// CommentPayload accompanies comment_* events.
type CommentPayload struct {
	ParentID    *string `json:"parent_id,omitempty"`
	BodyPreview string  `json:"body_preview,omitempty"`
}

// ReportPayload accompanies question_reported.
type ReportPayload struct {
	Reason string `json:"reason"`
}

// RoleChangedPayload accompanies user_role_changed.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role,omitempty"`
	NewRole domain.Role `json:"new_role"`
}

// ProfileUpdatedPayload accompanies profile_updated.
type ProfileUpdatedPayload struct {
	Username string `json:"username"`
}

const previewLength = 140

// Preview shortens text for event payloads, cutting on a rune boundary.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "…"
}
