package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/forum-service/internal/config"
	"github.com/spec-kit/forum-service/internal/events"
)

const webhookTimeout = 3 * time.Second

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("forum event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("question_id", event.QuestionID),
		zap.String("target_id", event.TargetID),
		zap.String("actor_id", event.Actor.UserID))

	switch event.Type {
	case events.EventAnswerCreated, events.EventAnswerAccepted, events.EventCommentCreated, events.EventUserRoleChanged:
		n.sendEmailNotificationStub(ctx, event)
	}
	return n.sendWebhook(ctx, event)
}

// sendEmailNotificationStub only logs; mail delivery is owned by the backend.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("target_id", event.TargetID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	timeout := webhookTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(url)
	agent.JSON(event)
	agent.Set("X-Forum-Event", string(event.Type))
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook %s: %w", event.Type, errs[0])
	}
	if status >= fiber.StatusBadRequest {
		return fmt.Errorf("webhook %s: status %d", event.Type, status)
	}
	return nil
}
