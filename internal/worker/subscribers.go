package worker

import (
	"github.com/spec-kit/forum-service/internal/service"
)

// StartSubscribers registers the event subscribers. Either argument may be nil.
func StartSubscribers(notifications *service.NotificationService, audit *service.AuditService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if audit != nil {
		audit.RegisterHandlers()
	}
}
