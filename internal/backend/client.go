// Package backend is a thin client for the external forum backend API, which
// owns persistence, authentication and all business records. Every response
// is wrapped in a {success, data, message} envelope.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/config"
	"github.com/spec-kit/forum-service/internal/observability"
	apperrors "github.com/spec-kit/forum-service/pkg/util/errorutil"
)

type requestIDKey struct{}

// WithRequestID returns a context that makes backend calls carry id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client calls the backend API.
type Client struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewClient builds a client from configuration.
func NewClient(cfg config.BackendConfig, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		timeout:   cfg.Timeout(),
		userAgent: cfg.UserAgent,
		logger:    logger,
		metrics:   metrics,
	}
}

type call struct {
	op     string
	method string
	path   string
	token  string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	err := c.send(ctx, req, out)
	c.metrics.RecordBackendCall(req.op, err)
	if err != nil {
		c.logger.Debug("backend call failed",
			zap.String("operation", req.op),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
	}
	return err
}

func (c *Client) send(ctx context.Context, req call, out any) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewBadGateway("backend request cancelled", err)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	agent := fiber.AcquireAgent()
	fr := agent.Request()
	fr.Header.SetMethod(req.method)
	fr.SetRequestURI(target)
	fr.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	fr.Header.Set(fiber.HeaderXRequestID, requestIDFrom(ctx))
	if c.userAgent != "" {
		agent.UserAgent(c.userAgent)
	}
	if req.token != "" {
		fr.Header.Set(fiber.HeaderAuthorization, "Bearer "+req.token)
	}
	if req.body != nil {
		agent.JSON(req.body)
	}
	agent.Timeout(c.callTimeout(ctx))

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return apperrors.NewBadGateway("invalid backend request", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return apperrors.NewBadGateway("backend request failed", errors.Join(errs...))
	}

	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if status >= http.StatusBadRequest {
				return statusError(status, http.StatusText(status))
			}
			return apperrors.NewBadGateway("malformed backend response", err)
		}
	}

	if status >= http.StatusBadRequest {
		return statusError(status, env.Message)
	}
	if len(body) == 0 {
		return nil
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request rejected by backend"
		}
		return apperrors.NewDomainError("BACKEND_REJECTED", message, http.StatusUnprocessableEntity, nil)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.NewBadGateway("malformed backend payload", err)
	}
	return nil
}

func (c *Client) callTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.NewValidationError(message, nil)
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorized(message)
	case http.StatusForbidden:
		return apperrors.NewForbidden(message)
	case http.StatusNotFound:
		return apperrors.NewDomainError("NOT_FOUND", message, http.StatusNotFound, nil)
	case http.StatusConflict:
		return apperrors.NewConflict(message, nil)
	default:
		return apperrors.NewBadGateway(fmt.Sprintf("backend returned %d: %s", status, message), nil)
	}
}

func path(format string, ids ...string) string {
	escaped := make([]any, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, escaped...)
}
