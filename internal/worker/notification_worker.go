package worker

import (
	"go.uber.org/zap"

	"github.com/hostelsync/hostelsync-api/internal/events"
	"github.com/hostelsync/hostelsync-api/internal/service"
)

// StartNotificationWorker subscribes the notification service and logs the resulting
// fan-out per event type.
func StartNotificationWorker(notifications *service.NotificationService, dispatcher events.Dispatcher, logger *zap.Logger) {
	if notifications == nil || dispatcher == nil {
		logger.Warn("notifications disabled")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification handlers registered",
		zap.Int("issue_reported", dispatcher.Subscribers(events.EventIssueReported)),
		zap.Int("booking_created", dispatcher.Subscribers(events.EventBookingCreated)))
}
