package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContactBook resolves the mail recipient of a notification.
type ContactBook interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

type NotificationMailer struct {
	Mailer   notification.Mailer
	Contacts ContactBook
	// BaseURL turns relative notification links into absolute ones.
	BaseURL string
}

func ConsumeNotificationCreated(
	ctx context.Context,
	reader MessageReader,
	nm NotificationMailer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.notification_email")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) Outcome {
		return nm.Handle(ctx, msg, log)
	})
}

// Handle e-mails a copy of the notification to its recipient.
func (nm NotificationMailer) Handle(ctx context.Context, msg kafkago.Message, log *zap.Logger) Outcome {
	var event events.NotificationCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode notification event failed", zap.Error(err))
		return Skip
	}

	name, email, err := nm.Contacts.Contact(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("notification recipient not found", zap.String("user_id", event.UserID))
			return Skip
		}
		log.Error("lookup notification recipient failed", zap.String("user_id", event.UserID), zap.Error(err))
		return Retry
	}
	if strings.TrimSpace(email) == "" {
		log.Warn("notification recipient has no e-mail", zap.String("user_id", event.UserID))
		return Skip
	}

	body := nm.render(name, event)
	if err := nm.Mailer.Send(ctx, email, event.Title, body); err != nil {
		log.Error("send notification e-mail failed",
			zap.String("notification_id", event.NotificationID),
			zap.Error(err),
		)
		return Retry
	}

	log.Info("notification e-mailed",
		zap.String("notification_id", event.NotificationID),
		zap.String("user_id", event.UserID),
	)
	return Done
}

func (nm NotificationMailer) render(name string, event events.NotificationCreatedEvent) string {
	n := notification.Notification{
		Kind:    event.Kind,
		Title:   event.Title,
		Message: event.Message,
	}
	if event.LinkURL != "" {
		link := event.LinkURL
		if strings.HasPrefix(link, "/") && nm.BaseURL != "" {
			link = strings.TrimRight(nm.BaseURL, "/") + link
		}
		n.LinkURL = &link
	}
	return notification.RenderGreeting(name) + notification.RenderHTML(n)
}
