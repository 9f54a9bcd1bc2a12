package notification

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	notificationerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the structured payload a state machine emits. Rendering to
// HTML happens on read.
type Message struct {
	UserID     string
	Kind       string
	EntityType string
	EntityID   string
	Title      string
	Message    string
	LinkURL    string
}

//go:generate mockgen -source=notification_sink.go -destination=mock/notification_sink_mock.go -package=mock
type Sink interface {
	WithTx(tx *sql.Tx) Sink
	Emit(ctx context.Context, msg Message) (Notification, error)
}

type sink struct {
	repo   Repository
	outbox kafka.OutboxRepository
	tx     *sql.Tx
	now    func() time.Time
	logger *zap.Logger
}

// NewSink stores notifications through repo. When outbox is non-nil every
// notification also queues a notification.created event for e-mail delivery.
func NewSink(repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Sink {
	l := zap.L().Named("notification.sink")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sink")
	}
	return &sink{repo: repo, outbox: outbox, now: time.Now, logger: l}
}

func (s *sink) WithTx(tx *sql.Tx) Sink {
	cp := *s
	cp.tx = tx
	return &cp
}

func (s *sink) Emit(ctx context.Context, msg Message) (Notification, error) {
	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		return Notification{}, notificationerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(msg.Title) == "" || strings.TrimSpace(msg.Message) == "" {
		return Notification{}, notificationerrors.ErrEmptyMessage
	}

	n := Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       msg.Kind,
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		Title:      msg.Title,
		Message:    msg.Message,
		CreatedAt:  s.now().UTC(),
	}
	if msg.LinkURL != "" {
		link := msg.LinkURL
		n.LinkURL = &link
	}

	repo := s.repo
	if s.tx != nil {
		repo = repo.WithTx(s.tx)
	}
	if err := repo.Create(ctx, &n); err != nil {
		s.logger.Error("emit notification persist failed",
			zap.String("user_id", msg.UserID),
			zap.String("kind", msg.Kind),
			zap.Error(err),
		)
		return Notification{}, err
	}

	if s.outbox != nil {
		ev, err := kafka.NewEvent(ctx, "notificacion", n.ID.String(), events.NotificationCreatedType, events.NotificationCreatedTopic,
			events.NotificationCreatedEvent{
				EventType:      events.NotificationCreatedType,
				NotificationID: n.ID.String(),
				UserID:         msg.UserID,
				Kind:           msg.Kind,
				Title:          msg.Title,
				Message:        msg.Message,
				LinkURL:        msg.LinkURL,
				OccurredAt:     n.CreatedAt,
			})
		if err != nil {
			return Notification{}, err
		}

		outbox := s.outbox
		if s.tx != nil {
			outbox = outbox.WithTx(s.tx)
		}
		if err := outbox.Create(ctx, ev); err != nil {
			s.logger.Error("emit notification outbox persist failed",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
			return Notification{}, err
		}
	}

	s.logger.Debug("notification emitted",
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", msg.UserID),
		zap.String("kind", msg.Kind),
	)
	return n, nil
}
