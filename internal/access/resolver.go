// Package access decides which answers a viewer sees on a question page and
// which actions the page offers them. Everything here is a pure function of
// its arguments; malformed input resolves to the most restrictive outcome.
package access

import "github.com/spec-kit/forum-service/internal/domain"

// Permissions is the set of page-level actions available to a viewer.
type Permissions struct {
	CanView         bool `json:"canView"`
	CanAnswer       bool `json:"canAnswer"`
	CanEdit         bool `json:"canEdit"`
	CanDelete       bool `json:"canDelete"`
	CanLike         bool `json:"canLike"`
	CanShare        bool `json:"canShare"`
	CanReport       bool `json:"canReport"`
	CanAcceptAnswer bool `json:"canAcceptAnswer"`
	CanModerate     bool `json:"canModerate"`
	CanComment      bool `json:"canComment"`
}

// AnswerActions is the set of actions available on a single answer.
type AnswerActions struct {
	CanEdit     bool `json:"canEdit"`
	CanDelete   bool `json:"canDelete"`
	CanModerate bool `json:"canModerate"`
}

// IncludeUnapproved reports whether the viewer may see any unapproved answers.
func IncludeUnapproved(viewer *domain.Viewer) bool {
	if !viewer.Authenticated() {
		return false
	}
	return viewer.Role.IsAdmin() || viewer.Role.IsExpertTier()
}

// SelectVisibleAnswers filters answers down to those the viewer may see,
// preserving input order. Admins see everything, expert-tier viewers see their
// own answers plus approved ones, everybody else sees approved answers only.
func SelectVisibleAnswers(viewer *domain.Viewer, _ domain.Question, answers []domain.Answer) []domain.Answer {
	visible := make([]domain.Answer, 0, len(answers))
	if len(answers) == 0 {
		return visible
	}

	if IncludeUnapproved(viewer) && viewer.Role.IsAdmin() {
		return append(visible, answers...)
	}

	ownAlso := IncludeUnapproved(viewer)
	for _, answer := range answers {
		if answer.IsApproved || (ownAlso && viewer.Is(answer.Expert)) {
			visible = append(visible, answer)
		}
	}
	return visible
}

// HasApprovedStaffAnswer reports whether any answer is approved and written by
// an expert or admin.
func HasApprovedStaffAnswer(answers []domain.Answer) bool {
	for _, answer := range answers {
		if answer.IsApproved && answer.Expert != nil && answer.Expert.Role.IsStaffAuthor() {
			return true
		}
	}
	return false
}

// ComputePermissions derives the page permissions for viewer. Each flag is
// computed independently.
func ComputePermissions(viewer *domain.Viewer, question domain.Question, visibleAnswers []domain.Answer) Permissions {
	authed := viewer.Authenticated()
	isAuthor := viewer.Is(question.Author)
	isAdmin := authed && viewer.Role.IsAdmin()
	expertTier := authed && viewer.Role.IsExpertTier()
	staffAnswered := HasApprovedStaffAnswer(visibleAnswers)

	return Permissions{
		CanView:         isAdmin || expertTier || isAuthor || staffAnswered,
		CanAnswer:       authed && viewer.Role.CanAuthorAnswers(),
		CanEdit:         isAuthor || isAdmin,
		CanDelete:       isAuthor || isAdmin,
		CanLike:         authed,
		CanShare:        true,
		CanReport:       authed,
		CanAcceptAnswer: isAuthor,
		CanModerate:     isAdmin,
		CanComment:      authed && (viewer.Role.IsStaffAuthor() || isAuthor || staffAnswered),
	}
}

// AnswerPermissions derives what viewer may do with a single answer.
func AnswerPermissions(viewer *domain.Viewer, answer domain.Answer) AnswerActions {
	isAdmin := viewer.Authenticated() && viewer.Role.IsAdmin()
	owns := viewer.Is(answer.Expert)
	return AnswerActions{
		CanEdit:     owns || isAdmin,
		CanDelete:   owns || isAdmin,
		CanModerate: isAdmin,
	}
}

// CanDeleteComment reports whether viewer may remove comment.
func CanDeleteComment(viewer *domain.Viewer, comment domain.Comment) bool {
	if !viewer.Authenticated() {
		return false
	}
	return viewer.Role.IsAdmin() || viewer.Is(comment.Author)
}
