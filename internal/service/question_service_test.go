package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

func newQuestionFixture() (*QuestionService, *fakeBackend, *fakeCache, *recordingDispatcher) {
	backend := newFakeBackend()
	backend.answers = []domain.Answer{
		{ID: "a1", QuestionID: "q1", Expert: &domain.UserRef{ID: "e1", Role: domain.RoleExpert}, IsApproved: true, Body: "approved"},
		{ID: "a2", QuestionID: "q1", Expert: &domain.UserRef{ID: "e2", Role: domain.RoleExpert}, Body: "pending"},
	}
	backend.comments = []domain.Comment{
		{ID: "c1", QuestionID: "q1", Author: &domain.UserRef{ID: "u1"}, Body: "thanks"},
		{ID: "c2", QuestionID: "q1", Author: &domain.UserRef{ID: "e1"}, Body: "welcome", ParentID: strPtr("c1")},
	}
	cache := newFakeCache()
	dispatcher := newRecordingDispatcher()
	svc := NewQuestionService(QuestionDependencies{Backend: backend, Cache: cache, Dispatcher: dispatcher})
	return svc, backend, cache, dispatcher
}

func answerIDs(page *QuestionPage) []string {
	ids := make([]string, 0, len(page.Answers))
	for _, a := range page.Answers {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestPage_GuestSeesApprovedAnswers(t *testing.T) {
	svc, _, _, _ := newQuestionFixture()

	page, err := svc.Page(context.Background(), nil, "", "q1")
	require.NoError(t, err)

	assert.False(t, page.Locked)
	assert.Equal(t, []string{"a1"}, answerIDs(page))
	assert.True(t, page.Permissions.CanView)
	assert.False(t, page.Permissions.CanLike)
	assert.False(t, page.Answers[0].Actions.CanEdit)
	require.Len(t, page.Comments, 1)
	require.Len(t, page.Comments[0].Replies, 1)
	assert.Equal(t, "c2", page.Comments[0].Replies[0].ID)
}

func TestPage_ExpertSeesOwnPendingAnswer(t *testing.T) {
	svc, _, _, _ := newQuestionFixture()

	page, err := svc.Page(context.Background(), viewer("e2", domain.RoleExpert), "tok", "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, answerIDs(page))
	assert.True(t, page.Answers[1].Actions.CanEdit)
	assert.False(t, page.Answers[0].Actions.CanEdit)
}

func TestPage_AdminSeesEverything(t *testing.T) {
	svc, _, _, _ := newQuestionFixture()

	page, err := svc.Page(context.Background(), viewer("root", domain.RoleAdmin), "tok", "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, answerIDs(page))
	assert.True(t, page.Answers[1].Actions.CanModerate)
	assert.True(t, page.Comments[0].CanDelete)
}

func TestPage_LockedWithoutStaffAnswer(t *testing.T) {
	svc, backend, _, _ := newQuestionFixture()
	backend.answers = backend.answers[1:]

	page, err := svc.Page(context.Background(), viewer("someone", domain.RoleUser), "tok", "q1")
	require.NoError(t, err)
	assert.True(t, page.Locked)
	assert.False(t, page.Permissions.CanView)
	assert.Empty(t, page.Answers)
	assert.Empty(t, page.Comments)
	assert.Equal(t, "Tenancy", page.Question.Title)
}

func TestPage_AuthorWithOnlyPendingAnswer(t *testing.T) {
	svc, backend, _, _ := newQuestionFixture()
	backend.answers = []domain.Answer{{ID: "a9", Expert: &domain.UserRef{ID: "u2", Role: domain.RoleExpert}}}

	page, err := svc.Page(context.Background(), viewer("u1", domain.RoleUser), "tok", "q1")
	require.NoError(t, err)
	assert.Empty(t, page.Answers)
	assert.True(t, page.Permissions.CanView)
	assert.False(t, page.Permissions.CanAnswer)
	assert.False(t, page.Locked)
}

func TestPage_UsesCache(t *testing.T) {
	svc, backend, cache, _ := newQuestionFixture()
	ctx := context.Background()

	_, err := svc.Page(ctx, nil, "", "q1")
	require.NoError(t, err)
	_, err = svc.Page(ctx, nil, "", "q1")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.fetches)
	assert.Contains(t, cache.entries, "q1")
}

func TestPage_BackendErrorPropagates(t *testing.T) {
	svc, backend, cache, _ := newQuestionFixture()
	backend.questionErr = apperrors.NewBadGateway("down", nil)

	_, err := svc.Page(context.Background(), nil, "", "q1")
	assert.True(t, apperrors.IsCode(err, "BACKEND_UNAVAILABLE"))
	assert.Empty(t, cache.entries)
}

func TestPage_UnknownQuestion(t *testing.T) {
	svc, _, _, _ := newQuestionFixture()

	_, err := svc.Page(context.Background(), nil, "", "missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("user is forbidden", func(t *testing.T) {
		svc, backend, _, _ := newQuestionFixture()
		_, err := svc.Answer(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "my take")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
		assert.False(t, backend.called("CreateAnswer"))
	})

	t.Run("lawyer is forbidden", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()
		_, err := svc.Answer(ctx, viewer("l1", domain.RoleLawyer), "tok", "q1", "my take")
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("empty body", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()
		_, err := svc.Answer(ctx, viewer("e1", domain.RoleExpert), "tok", "q1", "   ")
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("expert answers", func(t *testing.T) {
		svc, backend, cache, dispatcher := newQuestionFixture()
		cache.entries["q1"] = &domain.QuestionBundle{}

		answer, err := svc.Answer(ctx, viewer("e1", domain.RoleExpert), "tok", "q1", "  my take  ")
		require.NoError(t, err)
		assert.Equal(t, "my take", answer.Body)
		assert.True(t, backend.called("CreateAnswer"))
		assert.NotContains(t, cache.entries, "q1")
		require.Equal(t, []events.EventType{events.EventAnswerCreated}, dispatcher.types())
		assert.Equal(t, "q1", dispatcher.published[0].QuestionID)
		assert.Equal(t, "e1", dispatcher.published[0].Actor.UserID)
	})
}

func TestEditAndDeleteAnswer(t *testing.T) {
	ctx := context.Background()

	svc, backend, _, dispatcher := newQuestionFixture()
	_, err := svc.EditAnswer(ctx, viewer("e2", domain.RoleExpert), "tok", "a1", "hijack")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.EditAnswer(ctx, viewer("e1", domain.RoleExpert), "tok", "a1", "revised")
	require.NoError(t, err)
	assert.True(t, backend.called("UpdateAnswer"))

	err = svc.DeleteAnswer(ctx, viewer("u1", domain.RoleUser), "tok", "a2")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	require.NoError(t, svc.DeleteAnswer(ctx, viewer("root", domain.RoleAdmin), "tok", "a2"))
	assert.Equal(t, []events.EventType{events.EventAnswerUpdated, events.EventAnswerDeleted}, dispatcher.types())
	payload := dispatcher.published[1].Payload.(events.AnswerPayload)
	assert.Equal(t, "e2", payload.ExpertID)
}

func TestModerateAnswer(t *testing.T) {
	ctx := context.Background()
	svc, _, _, dispatcher := newQuestionFixture()

	_, err := svc.ModerateAnswer(ctx, viewer("m1", domain.RoleModerator), "tok", "a2", true)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	answer, err := svc.ModerateAnswer(ctx, viewer("root", domain.RoleAdmin), "tok", "a2", true)
	require.NoError(t, err)
	assert.True(t, answer.IsApproved)
	payload := dispatcher.published[0].Payload.(events.AnswerPayload)
	require.NotNil(t, payload.Approved)
	assert.True(t, *payload.Approved)
}

func TestAcceptAnswer(t *testing.T) {
	ctx := context.Background()

	svc, backend, _, _ := newQuestionFixture()
	err := svc.AcceptAnswer(ctx, viewer("e1", domain.RoleExpert), "tok", "q1", "a1")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	err = svc.AcceptAnswer(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "a2")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"), "pending answers are not visible to the author")

	require.NoError(t, svc.AcceptAnswer(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "a1"))
	assert.True(t, backend.called("AcceptAnswer"))
}

func TestComment(t *testing.T) {
	ctx := context.Background()

	t.Run("bystander before staff answer", func(t *testing.T) {
		svc, backend, _, _ := newQuestionFixture()
		backend.answers = nil
		_, err := svc.Comment(ctx, viewer("u5", domain.RoleUser), "tok", "q1", "hello", nil)
		assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	})

	t.Run("author may comment", func(t *testing.T) {
		svc, backend, _, dispatcher := newQuestionFixture()
		backend.answers = nil
		_, err := svc.Comment(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, []events.EventType{events.EventCommentCreated}, dispatcher.types())
	})

	t.Run("reply to unknown comment", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()
		_, err := svc.Comment(ctx, viewer("u5", domain.RoleUser), "tok", "q1", "hello", strPtr("nope"))
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	})

	t.Run("reply", func(t *testing.T) {
		svc, backend, _, _ := newQuestionFixture()
		_, err := svc.Comment(ctx, viewer("u5", domain.RoleUser), "tok", "q1", "hello", strPtr("c1"))
		require.NoError(t, err)
		require.NotNil(t, backend.lastParent)
		assert.Equal(t, "c1", *backend.lastParent)
	})

	t.Run("empty parent means top level", func(t *testing.T) {
		svc, backend, _, _ := newQuestionFixture()
		_, err := svc.Comment(ctx, viewer("u5", domain.RoleUser), "tok", "q1", "hello", strPtr(""))
		require.NoError(t, err)
		assert.Nil(t, backend.lastParent)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	svc, backend, _, _ := newQuestionFixture()

	err := svc.DeleteComment(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	err = svc.DeleteComment(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "c2")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	require.NoError(t, svc.DeleteComment(ctx, viewer("u1", domain.RoleUser), "tok", "q1", "c1"))
	assert.True(t, backend.called("DeleteComment"))
}

func TestLikeReportDelete(t *testing.T) {
	ctx := context.Background()
	svc, backend, cache, dispatcher := newQuestionFixture()

	_, err := svc.Like(ctx, nil, "", "q1")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	likes, err := svc.Like(ctx, viewer("u9", domain.RoleUser), "tok", "q1")
	require.NoError(t, err)
	assert.Equal(t, 7, likes)
	assert.Contains(t, cache.invalidated, "q1")

	err = svc.Report(ctx, viewer("u9", domain.RoleUser), "tok", "q1", " ")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	require.NoError(t, svc.Report(ctx, viewer("u9", domain.RoleUser), "tok", "q1", " spam "))
	assert.Equal(t, "spam", backend.lastReason)

	err = svc.DeleteQuestion(ctx, viewer("u9", domain.RoleUser), "tok", "q1")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	require.NoError(t, svc.DeleteQuestion(ctx, viewer("u1", domain.RoleUser), "tok", "q1"))

	assert.Equal(t, []events.EventType{events.EventQuestionReported, events.EventQuestionDeleted}, dispatcher.types())
}
