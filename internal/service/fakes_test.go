package service

import (
	"context"
	"sync"

	"github.com/spec-kit/forum-service/internal/backend"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/profile"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

type fakeBackend struct {
	mu sync.Mutex

	question *domain.Question
	answers  []domain.Answer
	comments []domain.Comment
	users    map[string]*domain.User
	experts  []domain.User

	fetches     int
	calls       []string
	lastParent  *string
	lastReason  string
	lastUpdate  *profile.Update
	lastRole    domain.Role
	profileErr  error
	questionErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		question: &domain.Question{ID: "q1", Title: "Tenancy", Author: &domain.UserRef{ID: "u1", Role: domain.RoleUser}},
		users:    map[string]*domain.User{},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) GetQuestion(_ context.Context, _, questionID string) (*domain.Question, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.questionErr != nil {
		return nil, f.questionErr
	}
	if f.question == nil || f.question.ID != questionID {
		return nil, apperrors.NewNotFound("question", nil)
	}
	q := *f.question
	return &q, nil
}

func (f *fakeBackend) ListAnswers(context.Context, string, string) ([]domain.Answer, error) {
	return append([]domain.Answer(nil), f.answers...), nil
}

func (f *fakeBackend) ListComments(context.Context, string, string) ([]domain.Comment, error) {
	return append([]domain.Comment(nil), f.comments...), nil
}

func (f *fakeBackend) DeleteQuestion(context.Context, string, string) error {
	f.record("DeleteQuestion")
	return nil
}

func (f *fakeBackend) AcceptAnswer(context.Context, string, string, string) error {
	f.record("AcceptAnswer")
	return nil
}

func (f *fakeBackend) LikeQuestion(context.Context, string, string) (int, error) {
	f.record("LikeQuestion")
	return 7, nil
}

func (f *fakeBackend) ReportQuestion(_ context.Context, _, _, reason string) error {
	f.record("ReportQuestion")
	f.lastReason = reason
	return nil
}

func (f *fakeBackend) CreateAnswer(_ context.Context, _, questionID, content string) (*domain.Answer, error) {
	f.record("CreateAnswer")
	return &domain.Answer{ID: "new-answer", QuestionID: questionID, Body: content}, nil
}

func (f *fakeBackend) GetAnswer(_ context.Context, _, answerID string) (*domain.Answer, error) {
	for _, a := range f.answers {
		if a.ID == answerID {
			answer := a
			return &answer, nil
		}
	}
	return nil, apperrors.NewNotFound("answer", nil)
}

func (f *fakeBackend) UpdateAnswer(_ context.Context, _, answerID, content string) (*domain.Answer, error) {
	f.record("UpdateAnswer")
	return &domain.Answer{ID: answerID, Body: content}, nil
}

func (f *fakeBackend) DeleteAnswer(context.Context, string, string) error {
	f.record("DeleteAnswer")
	return nil
}

func (f *fakeBackend) ModerateAnswer(_ context.Context, _, answerID string, approve bool) (*domain.Answer, error) {
	f.record("ModerateAnswer")
	return &domain.Answer{ID: answerID, IsApproved: approve}, nil
}

func (f *fakeBackend) CreateComment(_ context.Context, _, questionID, content string, parentID *string) (*domain.Comment, error) {
	f.record("CreateComment")
	f.lastParent = parentID
	return &domain.Comment{ID: "new-comment", QuestionID: questionID, Body: content, ParentID: parentID}, nil
}

func (f *fakeBackend) DeleteComment(context.Context, string, string) error {
	f.record("DeleteComment")
	return nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ string, update profile.Update) (*domain.User, error) {
	f.record("UpdateProfile")
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	f.lastUpdate = &update
	return &domain.User{ID: "u1", Username: update.Username}, nil
}

func (f *fakeBackend) GetUser(_ context.Context, _, userID string) (*domain.User, error) {
	if user, ok := f.users[userID]; ok {
		u := *user
		return &u, nil
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (f *fakeBackend) ListExperts(context.Context, string, string) ([]domain.User, error) {
	return f.experts, nil
}

func (f *fakeBackend) ListUsers(_ context.Context, _ string, page, limit int) (*backend.UserPage, error) {
	f.record("ListUsers")
	return &backend.UserPage{Page: page, Limit: limit}, nil
}

func (f *fakeBackend) UpdateUserRole(_ context.Context, _, userID string, role domain.Role) (*domain.User, error) {
	f.record("UpdateUserRole")
	f.lastRole = role
	return &domain.User{ID: userID, Role: role}, nil
}

type fakeCache struct {
	entries     map[string]*domain.QuestionBundle
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*domain.QuestionBundle{}}
}

func (c *fakeCache) Get(_ context.Context, id string) (*domain.QuestionBundle, bool) {
	b, ok := c.entries[id]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, b *domain.QuestionBundle) {
	c.entries[b.Question.ID] = b
}

func (c *fakeCache) Invalidate(_ context.Context, id string) {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

type recordingDispatcher struct {
	events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher(nil)}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type fakeLog struct {
	entries []domain.ModerationEntry
	err     error
}

func (l *fakeLog) Create(_ context.Context, entry *domain.ModerationEntry) error {
	if l.err != nil {
		return l.err
	}
	entry.ID = "entry-" + string(rune('a'+len(l.entries)))
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *fakeLog) ListByTarget(_ context.Context, targetType domain.TargetType, targetID string) ([]domain.ModerationEntry, error) {
	out := []domain.ModerationEntry{}
	for _, e := range l.entries {
		if e.TargetType == targetType && e.TargetID == targetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLog) ListRecent(_ context.Context, limit int) ([]domain.ModerationEntry, error) {
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	return l.entries[:limit], nil
}

func viewer(id string, role domain.Role) *domain.Viewer {
	return &domain.Viewer{ID: id, Role: role}
}

func strPtr(s string) *string { return &s }
