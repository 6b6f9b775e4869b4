package dto

// AnswerRequest creates or edits an answer.
type AnswerRequest struct {
	Body string `json:"body" form:"body" validate:"required"`
}

// CommentRequest creates a comment; ParentID makes it a reply.
type CommentRequest struct {
	Body     string  `json:"body" form:"body" validate:"required"`
	ParentID *string `json:"parentComment" form:"parentComment"`
}

// ReportRequest files an abuse report.
type ReportRequest struct {
	Reason string `json:"reason" form:"reason" validate:"required"`
}

// RoleChangeRequest assigns a role to a user.
type RoleChangeRequest struct {
	Role string `json:"role" form:"role" validate:"required"`
}

// ProfileRequest is the JSON form of a profile edit. Form submissions use
// social_<n> fields instead of the Socials array.
type ProfileRequest struct {
	Username string   `json:"username"`
	Bio      string   `json:"bio"`
	Website  string   `json:"website"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Socials  []string `json:"socials"`
}

// UserListQuery pages the admin user listing.
type UserListQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ModerationLogQuery narrows the moderation log.
type ModerationLogQuery struct {
	TargetType string `query:"targetType" validate:"omitempty,oneof=QUESTION ANSWER COMMENT USER"`
	TargetID   string `query:"targetId" validate:"required_with=TargetType"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
}
