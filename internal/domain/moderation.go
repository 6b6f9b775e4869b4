package domain

import "time"

// ModerationAction captures what a moderation log entry records.
type ModerationAction string

const (
	ActionAnswerApproved  ModerationAction = "ANSWER_APPROVED"
	ActionAnswerRejected  ModerationAction = "ANSWER_REJECTED"
	ActionAnswerDeleted   ModerationAction = "ANSWER_DELETED"
	ActionQuestionDeleted ModerationAction = "QUESTION_DELETED"
	ActionQuestionReport  ModerationAction = "QUESTION_REPORTED"
	ActionCommentDeleted  ModerationAction = "COMMENT_DELETED"
	ActionRoleChanged     ModerationAction = "ROLE_CHANGED"
)

// TargetType names the kind of record a moderation entry is about.
type TargetType string

const (
	TargetQuestion TargetType = "QUESTION"
	TargetAnswer   TargetType = "ANSWER"
	TargetComment  TargetType = "COMMENT"
	TargetUser     TargetType = "USER"
)

// ModerationEntry is an immutable audit trail entry kept locally.
type ModerationEntry struct {
	ID         string           `json:"id"`
	ActorID    string           `json:"actorId"`
	ActorRole  Role             `json:"actorRole"`
	Action     ModerationAction `json:"action"`
	TargetType TargetType       `json:"targetType"`
	TargetID   string           `json:"targetId"`
	Details    map[string]any   `json:"details,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}
