package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/api/http/handlers"
	"github.com/spec-kit/forum-service/internal/auth"
	"github.com/spec-kit/forum-service/internal/backend"
	"github.com/spec-kit/forum-service/internal/config"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/observability"
	"github.com/spec-kit/forum-service/internal/profile"
	"github.com/spec-kit/forum-service/internal/service"
)

const routerSecret = "router-secret"

type fakeForumAPI struct {
	mu         sync.Mutex
	requestIDs []string
}

func (f *fakeForumAPI) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.mu.Unlock()

	reply := func(status int, data string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = io.WriteString(w, `{"success":false,"message":"`+data+`"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":`+data+`}`)
	}

	switch r.Method + " " + r.URL.Path {
	case "GET /questions/q1":
		reply(200, `{"id":"q1","title":"Lease dispute","author":{"id":"u1","role":"user"},"status":"pending"}`)
	case "GET /questions/q1/answers":
		reply(200, `[{"id":"a1","questionId":"q1","expert":{"id":"e1","role":"expert"},"isApproved":true,"body":"ok"},
			{"id":"a2","questionId":"q1","expert":{"id":"e2","role":"expert"},"isApproved":false,"body":"draft"}]`)
	case "GET /questions/q1/comments":
		reply(200, `[{"id":"c1","questionId":"q1","author":{"id":"u1"},"body":"thanks"}]`)
	case "POST /questions/q1/answers":
		reply(201, `{"id":"a3","questionId":"q1","body":"new"}`)
	case "PATCH /users/me":
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"username":"taken"`) {
			reply(409, "duplicate username")
			return
		}
		reply(200, `{"id":"u1","username":"jana"}`)
	case "GET /users":
		reply(200, `{"items":[{"id":"u1","username":"jana","role":"user"}],"total":1,"page":1,"limit":20}`)
	case "GET /experts":
		reply(200, `[{"id":"e1","role":"expert"},{"id":"u1","role":"user"}]`)
	default:
		reply(404, "not found")
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app     *fiber.App
	api     *fakeForumAPI
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, redis handlers.Pinger) *testServer {
	t.Helper()
	api := &fakeForumAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 2}, logger, metrics)
	dispatcher := events.NewInMemoryDispatcher(logger)

	questions := service.NewQuestionService(service.QuestionDependencies{Backend: client, Dispatcher: dispatcher, Logger: logger})
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("forum", "test", stubPinger{}, redis),
		Questions:      handlers.NewQuestionsHandler(questions),
		Answers:        handlers.NewAnswersHandler(questions),
		Profile:        handlers.NewProfileHandler(service.NewProfileService(client, profile.New(), dispatcher, logger)),
		Experts:        handlers.NewExpertsHandler(service.NewExpertService(client)),
		Admin:          handlers.NewAdminHandler(service.NewAdminService(service.AdminDependencies{Backend: client, Dispatcher: dispatcher, Logger: logger})),
		AuthMiddleware: auth.NewMiddleware(auth.NewTokenManager(routerSecret, 5), "token", logger),
		Metrics:        metrics,
	})
	return &testServer{app: app, api: api, metrics: metrics}
}

func bearer(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	token, _, err := auth.NewTokenManager(routerSecret, 5).GenerateToken(id, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, req *nethttp.Request) (int, map[string]any, nethttp.Header) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body, resp.Header
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func errorFields(body map[string]any) map[string]any {
	e, _ := body["error"].(map[string]any)
	details, _ := e["details"].(map[string]any)
	fields, _ := details["fields"].(map[string]any)
	return fields
}

func TestQuestionPageForGuest(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	status, body, header := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/questions/q1", nil))
	require.Equal(t, nethttp.StatusOK, status)

	data := body["data"].(map[string]any)
	perms := data["permissions"].(map[string]any)
	assert.Equal(t, true, perms["canView"])
	assert.Equal(t, false, perms["canLike"])
	assert.Equal(t, true, perms["canShare"])
	assert.Len(t, data["answers"], 1)
	assert.Len(t, data["comments"], 1)
	assert.NotEmpty(t, header.Get("X-Request-ID"))
}

func TestRequestIDIsForwarded(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodGet, "/questions/q1", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	status, _, header := s.do(t, req)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "trace-1", header.Get("X-Request-ID"))
	assert.Equal(t, []string{"trace-1", "trace-1", "trace-1"}, s.api.requestIDs)
}

func TestAnswerRequiresExpert(t *testing.T) {
	s := newTestServer(t, stubPinger{})
	newReq := func(auth string) *nethttp.Request {
		req := httptest.NewRequest(nethttp.MethodPost, "/questions/q1/answers", strings.NewReader(`{"body":"my answer"}`))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		return req
	}

	status, body, _ := s.do(t, newReq(""))
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body, _ = s.do(t, newReq(bearer(t, "u7", domain.RoleUser)))
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	status, body, _ = s.do(t, newReq(bearer(t, "e1", domain.RoleExpert)))
	assert.Equal(t, nethttp.StatusCreated, status)
	assert.Equal(t, "a3", body["data"].(map[string]any)["id"])
}

func TestAnswerBodyRequired(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodPost, "/questions/q1/answers", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", domain.RoleExpert))
	status, body, _ := s.do(t, req)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "required", errorFields(body)["body"])
}

func TestProfileFormValidation(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	form := url.Values{}
	form.Set("username", "ab")
	form.Set("phone", "0901 123 456")
	form.Set("social_0", "")
	form.Set("social_1", "ftp://example.com")
	req := httptest.NewRequest(nethttp.MethodPost, "/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", bearer(t, "u1", domain.RoleUser))

	status, body, _ := s.do(t, req)
	require.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
	fields := errorFields(body)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "social_1")
	assert.NotContains(t, fields, "social_0")
}

func TestProfileJSONConflict(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodPost, "/profile", strings.NewReader(`{"username":"taken"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1", domain.RoleUser))

	status, body, _ := s.do(t, req)
	require.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "username already taken", errorFields(body)["username"])
}

func TestProfileSaved(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodPost, "/profile", strings.NewReader(`{"username":"jana"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "u1", domain.RoleUser))

	status, body, _ := s.do(t, req)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "jana", body["data"].(map[string]any)["username"])
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", bearer(t, "m1", domain.RoleModerator))
	status, _, _ := s.do(t, req)
	assert.Equal(t, nethttp.StatusForbidden, status)

	req = httptest.NewRequest(nethttp.MethodGet, "/admin/users?page=1&limit=20", nil)
	req.Header.Set("Authorization", bearer(t, "root", domain.RoleAdmin))
	status, body, _ := s.do(t, req)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["total"])

	req = httptest.NewRequest(nethttp.MethodGet, "/admin/moderation-log?targetType=POST", nil)
	req.Header.Set("Authorization", bearer(t, "root", domain.RoleAdmin))
	status, _, _ = s.do(t, req)
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestExpertsFiltered(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	status, body, _ := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/experts?category=family", nil))
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestDeleteCommentNeedsQuestionID(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(nethttp.MethodDelete, "/comments/c1", nil)
	req.Header.Set("Authorization", bearer(t, "u1", domain.RoleUser))
	status, body, _ := s.do(t, req)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "required", errorFields(body)["questionId"])
}

func TestBackendNotFoundIsRendered(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	status, body, _ := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/questions/missing", nil))
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	status, body, _ := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/nowhere", nil))
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, stubPinger{})

	status, body, _ := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/health/live", nil))
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, _, _ = s.do(t, httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil))
	assert.Equal(t, nethttp.StatusOK, status)

	resp, err := s.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "forum_http_requests_total")
}

func TestReadinessFailsWhenRedisDown(t *testing.T) {
	s := newTestServer(t, stubPinger{err: errors.New("connection refused")})

	status, body, _ := s.do(t, httptest.NewRequest(nethttp.MethodGet, "/health/ready", nil))
	assert.Equal(t, nethttp.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(body))
}
