package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hostelsync/hostelsync-api/internal/config"
	"github.com/hostelsync/hostelsync-api/internal/events"
)

// Notice is one outgoing notification derived from a domain event.
type Notice struct {
	Channel  string // "email" or "webhook"
	Audience string // a user id, or "role:<ROLE>" for a whole worker queue
	Subject  string
}

// NotificationService turns domain events into notices. Delivery is stubbed: notices are
// logged, and channels without configuration are skipped.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every event that produces notices.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, et := range []events.EventType{
		events.EventIssueReported,
		events.EventIssueStatusChanged,
		events.EventIssueAssigned,
		events.EventCleaningStatusChanged,
		events.EventBookingCreated,
		events.EventBookingCancelled,
	} {
		n.dispatcher.Subscribe(et, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	for _, notice := range n.Notices(event) {
		n.deliver(ctx, event, notice)
	}
	return nil
}

// Notices maps an event to the notices it should produce on the configured channels.
func (n *NotificationService) Notices(event events.Event) []Notice {
	var out []Notice
	email := func(audience, subject string) {
		if strings.TrimSpace(n.cfg.EmailFrom) != "" && audience != "" {
			out = append(out, Notice{Channel: "email", Audience: audience, Subject: subject})
		}
	}
	webhook := func(subject string) {
		if strings.TrimSpace(n.cfg.WebhookURL) != "" {
			out = append(out, Notice{Channel: "webhook", Audience: "ops", Subject: subject})
		}
	}

	switch p := event.Payload.(type) {
	case events.IssueReportedPayload:
		subject := fmt.Sprintf("New %s issue (%s): %s", strings.ToLower(string(p.Category)), p.Priority, p.Title)
		email("role:"+string(p.Category.WorkerRole()), subject)
		webhook(subject)
	case events.IssueStatusChangedPayload:
		webhook(fmt.Sprintf("%s issue %s moved %s -> %s", strings.ToLower(string(p.Category)), event.ResourceID, p.OldStatus, p.NewStatus))
	case events.IssueAssignedPayload:
		email(p.AssigneeID, fmt.Sprintf("You were assigned %s issue %s", strings.ToLower(string(p.Category)), event.ResourceID))
	case events.CleaningStatusChangedPayload:
		if p.CleanerID != nil {
			email(*p.CleanerID, fmt.Sprintf("Cleaning request %s is now %s", event.ResourceID, p.NewStatus))
		}
		webhook(fmt.Sprintf("cleaning request %s moved %s -> %s", event.ResourceID, p.OldStatus, p.NewStatus))
	case events.BookingPayload:
		verb := "confirmed"
		if event.Type == events.EventBookingCancelled {
			verb = "cancelled"
		}
		email(event.Actor.UserID, fmt.Sprintf("Seat booking for %s %s", p.BookingDate, verb))
	}
	return out
}

func (n *NotificationService) deliver(_ context.Context, event events.Event, notice Notice) {
	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("resource_id", event.ResourceID),
		zap.String("actor_id", event.Actor.UserID),
		zap.String("channel", notice.Channel),
		zap.String("audience", notice.Audience),
		zap.String("subject", notice.Subject),
	}
	switch notice.Channel {
	case "email":
		fields = append(fields, zap.String("from", n.cfg.EmailFrom))
	case "webhook":
		fields = append(fields, zap.String("url", n.cfg.WebhookURL))
	}
	n.logger.Info("notification queued", fields...)
}
