package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/forum-service/internal/access"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

const (
	maxAnswerLength  = 20000
	maxCommentLength = 2000
	maxReportLength  = 500
)

// QuestionBackend is the part of the backend API used for question pages.
type QuestionBackend interface {
	GetQuestion(ctx context.Context, token, questionID string) (*domain.Question, error)
	ListAnswers(ctx context.Context, token, questionID string) ([]domain.Answer, error)
	ListComments(ctx context.Context, token, questionID string) ([]domain.Comment, error)
	DeleteQuestion(ctx context.Context, token, questionID string) error
	AcceptAnswer(ctx context.Context, token, questionID, answerID string) error
	LikeQuestion(ctx context.Context, token, questionID string) (int, error)
	ReportQuestion(ctx context.Context, token, questionID, reason string) error
	CreateAnswer(ctx context.Context, token, questionID, content string) (*domain.Answer, error)
	GetAnswer(ctx context.Context, token, answerID string) (*domain.Answer, error)
	UpdateAnswer(ctx context.Context, token, answerID, content string) (*domain.Answer, error)
	DeleteAnswer(ctx context.Context, token, answerID string) error
	ModerateAnswer(ctx context.Context, token, answerID string, approve bool) (*domain.Answer, error)
	CreateComment(ctx context.Context, token, questionID, content string, parentID *string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, token, commentID string) error
}

// BundleCache caches viewer-independent question bundles.
type BundleCache interface {
	Get(ctx context.Context, questionID string) (*domain.QuestionBundle, bool)
	Set(ctx context.Context, bundle *domain.QuestionBundle)
	Invalidate(ctx context.Context, questionID string)
}

// AnswerView is an answer together with the viewer's actions on it.
type AnswerView struct {
	domain.Answer
	Actions access.AnswerActions `json:"actions"`
}

// QuestionPage is everything a question page needs for one viewer.
type QuestionPage struct {
	Question    domain.Question    `json:"question"`
	Answers     []AnswerView       `json:"answers"`
	Comments    []*CommentNode     `json:"comments"`
	Permissions access.Permissions `json:"permissions"`
	// Locked is set when the viewer may not read the answers yet.
	Locked bool `json:"locked"`
}

// QuestionService coordinates question page reads and content mutations.
type QuestionService struct {
	backend    QuestionBackend
	cache      BundleCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// QuestionDependencies bundles collaborators for the question service.
type QuestionDependencies struct {
	Backend    QuestionBackend
	Cache      BundleCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewQuestionService constructs the service.
func NewQuestionService(deps QuestionDependencies) *QuestionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		backend:    deps.Backend,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Page assembles the question page for viewer.
func (s *QuestionService) Page(ctx context.Context, viewer *domain.Viewer, token, questionID string) (*QuestionPage, error) {
	bundle, err := s.cachedBundle(ctx, token, questionID)
	if err != nil {
		return nil, err
	}

	visible := access.SelectVisibleAnswers(viewer, bundle.Question, bundle.Answers)
	perms := access.ComputePermissions(viewer, bundle.Question, visible)

	page := &QuestionPage{
		Question:    bundle.Question,
		Answers:     make([]AnswerView, 0, len(visible)),
		Comments:    make([]*CommentNode, 0),
		Permissions: perms,
	}
	if !perms.CanView {
		page.Locked = true
		return page, nil
	}

	for _, answer := range visible {
		page.Answers = append(page.Answers, AnswerView{
			Answer:  answer,
			Actions: access.AnswerPermissions(viewer, answer),
		})
	}
	page.Comments = BuildCommentTree(viewer, bundle.Comments)
	return page, nil
}

// Answer posts a new answer to a question.
func (s *QuestionService) Answer(ctx context.Context, viewer *domain.Viewer, token, questionID, body string) (*domain.Answer, error) {
	content, err := requireText("body", body, maxAnswerLength)
	if err != nil {
		return nil, err
	}
	_, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return nil, err
	}
	if !perms.CanAnswer {
		return nil, apperrors.NewForbidden("only experts and admins can answer")
	}

	answer, err := s.backend.CreateAnswer(ctx, token, questionID, content)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, questionID, events.Event{
		Type:       events.EventAnswerCreated,
		TargetType: domain.TargetAnswer,
		TargetID:   answer.ID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.AnswerPayload{ExpertID: viewer.ID, BodyPreview: events.Preview(content)},
	})
	return answer, nil
}

// EditAnswer replaces the content of an answer.
func (s *QuestionService) EditAnswer(ctx context.Context, viewer *domain.Viewer, token, answerID, body string) (*domain.Answer, error) {
	content, err := requireText("body", body, maxAnswerLength)
	if err != nil {
		return nil, err
	}
	current, err := s.backend.GetAnswer(ctx, token, answerID)
	if err != nil {
		return nil, err
	}
	if !access.AnswerPermissions(viewer, *current).CanEdit {
		return nil, apperrors.NewForbidden("you cannot edit this answer")
	}

	answer, err := s.backend.UpdateAnswer(ctx, token, answerID, content)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, current.QuestionID, events.Event{
		Type:       events.EventAnswerUpdated,
		TargetType: domain.TargetAnswer,
		TargetID:   answerID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.AnswerPayload{ExpertID: expertID(current), BodyPreview: events.Preview(content)},
	})
	return answer, nil
}

// DeleteAnswer removes an answer.
func (s *QuestionService) DeleteAnswer(ctx context.Context, viewer *domain.Viewer, token, answerID string) error {
	current, err := s.backend.GetAnswer(ctx, token, answerID)
	if err != nil {
		return err
	}
	if !access.AnswerPermissions(viewer, *current).CanDelete {
		return apperrors.NewForbidden("you cannot delete this answer")
	}

	if err := s.backend.DeleteAnswer(ctx, token, answerID); err != nil {
		return err
	}
	s.changed(ctx, current.QuestionID, events.Event{
		Type:       events.EventAnswerDeleted,
		TargetType: domain.TargetAnswer,
		TargetID:   answerID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.AnswerPayload{ExpertID: expertID(current)},
	})
	return nil
}

// ModerateAnswer approves or rejects an answer.
func (s *QuestionService) ModerateAnswer(ctx context.Context, viewer *domain.Viewer, token, answerID string, approve bool) (*domain.Answer, error) {
	current, err := s.backend.GetAnswer(ctx, token, answerID)
	if err != nil {
		return nil, err
	}
	if !access.AnswerPermissions(viewer, *current).CanModerate {
		return nil, apperrors.NewForbidden("only admins can moderate answers")
	}

	answer, err := s.backend.ModerateAnswer(ctx, token, answerID, approve)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, current.QuestionID, events.Event{
		Type:       events.EventAnswerModerated,
		TargetType: domain.TargetAnswer,
		TargetID:   answerID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.AnswerPayload{ExpertID: expertID(current), Approved: &approve},
	})
	return answer, nil
}

// AcceptAnswer marks one of the question's visible answers as accepted.
func (s *QuestionService) AcceptAnswer(ctx context.Context, viewer *domain.Viewer, token, questionID, answerID string) error {
	bundle, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return err
	}
	if !perms.CanAcceptAnswer {
		return apperrors.NewForbidden("only the question author can accept an answer")
	}
	visible := access.SelectVisibleAnswers(viewer, bundle.Question, bundle.Answers)
	if !containsAnswer(visible, answerID) {
		return apperrors.NewNotFound("answer", map[string]any{"answerId": answerID})
	}

	if err := s.backend.AcceptAnswer(ctx, token, questionID, answerID); err != nil {
		return err
	}
	s.changed(ctx, questionID, events.Event{
		Type:       events.EventAnswerAccepted,
		TargetType: domain.TargetAnswer,
		TargetID:   answerID,
		Actor:      events.ActorOf(viewer),
	})
	return nil
}

// Comment adds a comment, optionally as a reply to an existing one.
func (s *QuestionService) Comment(ctx context.Context, viewer *domain.Viewer, token, questionID, body string, parentID *string) (*domain.Comment, error) {
	content, err := requireText("body", body, maxCommentLength)
	if err != nil {
		return nil, err
	}
	bundle, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return nil, err
	}
	if !perms.CanComment {
		return nil, apperrors.NewForbidden("you cannot comment on this question yet")
	}
	if parentID != nil {
		if *parentID == "" {
			parentID = nil
		} else if findComment(bundle.Comments, *parentID) == nil {
			return nil, apperrors.NewValidationError("reply target does not exist",
				map[string]any{"fields": map[string]any{"parentComment": "unknown comment"}})
		}
	}

	comment, err := s.backend.CreateComment(ctx, token, questionID, content, parentID)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, questionID, events.Event{
		Type:       events.EventCommentCreated,
		TargetType: domain.TargetComment,
		TargetID:   comment.ID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.CommentPayload{ParentID: parentID, BodyPreview: events.Preview(content)},
	})
	return comment, nil
}

// DeleteComment removes a comment of a question.
func (s *QuestionService) DeleteComment(ctx context.Context, viewer *domain.Viewer, token, questionID, commentID string) error {
	bundle, err := s.fetchBundle(ctx, token, questionID)
	if err != nil {
		return err
	}
	comment := findComment(bundle.Comments, commentID)
	if comment == nil {
		return apperrors.NewNotFound("comment", map[string]any{"commentId": commentID})
	}
	if !access.CanDeleteComment(viewer, *comment) {
		return apperrors.NewForbidden("you cannot delete this comment")
	}

	if err := s.backend.DeleteComment(ctx, token, commentID); err != nil {
		return err
	}
	s.changed(ctx, questionID, events.Event{
		Type:       events.EventCommentDeleted,
		TargetType: domain.TargetComment,
		TargetID:   commentID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.CommentPayload{ParentID: comment.ParentID, BodyPreview: events.Preview(comment.Body)},
	})
	return nil
}

// Like toggles the viewer's like and returns the new count.
func (s *QuestionService) Like(ctx context.Context, viewer *domain.Viewer, token, questionID string) (int, error) {
	_, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return 0, err
	}
	if !perms.CanLike {
		return 0, apperrors.NewForbidden("sign in to like questions")
	}
	likes, err := s.backend.LikeQuestion(ctx, token, questionID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, questionID)
	return likes, nil
}

// Report files an abuse report against a question.
func (s *QuestionService) Report(ctx context.Context, viewer *domain.Viewer, token, questionID, reason string) error {
	text, err := requireText("reason", reason, maxReportLength)
	if err != nil {
		return err
	}
	_, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return err
	}
	if !perms.CanReport {
		return apperrors.NewForbidden("sign in to report questions")
	}

	if err := s.backend.ReportQuestion(ctx, token, questionID, text); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:       events.EventQuestionReported,
		QuestionID: questionID,
		TargetType: domain.TargetQuestion,
		TargetID:   questionID,
		Actor:      events.ActorOf(viewer),
		Payload:    events.ReportPayload{Reason: text},
	})
	return nil
}

// DeleteQuestion removes a question.
func (s *QuestionService) DeleteQuestion(ctx context.Context, viewer *domain.Viewer, token, questionID string) error {
	_, perms, err := s.permissions(ctx, viewer, token, questionID)
	if err != nil {
		return err
	}
	if !perms.CanDelete {
		return apperrors.NewForbidden("you cannot delete this question")
	}

	if err := s.backend.DeleteQuestion(ctx, token, questionID); err != nil {
		return err
	}
	s.changed(ctx, questionID, events.Event{
		Type:       events.EventQuestionDeleted,
		TargetType: domain.TargetQuestion,
		TargetID:   questionID,
		Actor:      events.ActorOf(viewer),
	})
	return nil
}

// permissions evaluates the page permissions against fresh backend data.
func (s *QuestionService) permissions(ctx context.Context, viewer *domain.Viewer, token, questionID string) (*domain.QuestionBundle, access.Permissions, error) {
	bundle, err := s.fetchBundle(ctx, token, questionID)
	if err != nil {
		return nil, access.Permissions{}, err
	}
	visible := access.SelectVisibleAnswers(viewer, bundle.Question, bundle.Answers)
	return bundle, access.ComputePermissions(viewer, bundle.Question, visible), nil
}

func (s *QuestionService) cachedBundle(ctx context.Context, token, questionID string) (*domain.QuestionBundle, error) {
	if s.cache != nil {
		if bundle, ok := s.cache.Get(ctx, questionID); ok {
			return bundle, nil
		}
	}
	bundle, err := s.fetchBundle(ctx, token, questionID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, bundle)
	}
	return bundle, nil
}

// fetchBundle loads question, answers and comments concurrently.
func (s *QuestionService) fetchBundle(ctx context.Context, token, questionID string) (*domain.QuestionBundle, error) {
	var (
		question *domain.Question
		answers  []domain.Answer
		comments []domain.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		question, err = s.backend.GetQuestion(gctx, token, questionID)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = s.backend.ListAnswers(gctx, token, questionID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.backend.ListComments(gctx, token, questionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if answers == nil {
		answers = []domain.Answer{}
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return &domain.QuestionBundle{Question: *question, Answers: answers, Comments: comments}, nil
}

func (s *QuestionService) changed(ctx context.Context, questionID string, event events.Event) {
	s.invalidate(ctx, questionID)
	event.QuestionID = questionID
	s.publish(ctx, event)
}

func (s *QuestionService) invalidate(ctx context.Context, questionID string) {
	if s.cache != nil && questionID != "" {
		s.cache.Invalidate(ctx, questionID)
	}
}

func (s *QuestionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func requireText(field, value string, limit int) (string, error) {
	text := strings.TrimSpace(value)
	switch {
	case text == "":
		return "", apperrors.NewValidationError(field+" is required",
			map[string]any{"fields": map[string]any{field: "required"}})
	case utf8.RuneCountInString(text) > limit:
		return "", apperrors.NewValidationError(field+" is too long",
			map[string]any{"fields": map[string]any{field: "too long"}, "max": limit})
	}
	return text, nil
}

func containsAnswer(answers []domain.Answer, id string) bool {
	for _, answer := range answers {
		if answer.ID == id {
			return true
		}
	}
	return false
}

func findComment(comments []domain.Comment, id string) *domain.Comment {
	for i := range comments {
		if comments[i].ID == id {
			return &comments[i]
		}
	}
	return nil
}

func expertID(answer *domain.Answer) string {
	if answer == nil || answer.Expert == nil {
		return ""
	}
	return answer.Expert.ID
}
