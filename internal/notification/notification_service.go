package notification

import (
	"context"
	"errors"
	"time"

	notificationerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetAll(ctx context.Context, userID string, unreadOnly bool) ([]NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	SetRead(ctx context.Context, userID, id string, read bool) (NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, now: time.Now, logger: l}
}

func (s *service) GetAll(ctx context.Context, userID string, unreadOnly bool) ([]NotificationResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, notificationerrors.ErrInvalidUserID
	}
	list, err := s.repo.FindAllByUser(ctx, userID, unreadOnly)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return mapToListResponse(list), nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, notificationerrors.ErrInvalidUserID
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) SetRead(ctx context.Context, userID, id string, read bool) (NotificationResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return NotificationResponse{}, notificationerrors.ErrInvalidNotificationID
	}

	if err := s.repo.SetRead(ctx, userID, id, read, s.now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotificationResponse{}, notificationerrors.ErrNotificationNotFound
		}
		s.logger.Error("set notification read failed", zap.String("notification_id", id), zap.Error(err))
		return NotificationResponse{}, err
	}

	n, err := s.repo.FindByIDAndUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotificationResponse{}, notificationerrors.ErrNotificationNotFound
		}
		return NotificationResponse{}, err
	}
	return mapToResponse(*n), nil
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, notificationerrors.ErrInvalidUserID
	}
	updated, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		s.logger.Error("mark all notifications read failed", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("notifications marked read", zap.String("user_id", userID), zap.Int64("updated", updated))
	return updated, nil
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID.String(),
		Kind:        n.Kind,
		EntityType:  n.EntityType,
		EntityID:    n.EntityID,
		Title:       n.Title,
		Message:     n.Message,
		MessageHTML: RenderHTML(n),
		LinkURL:     n.LinkURL,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}

func mapToListResponse(list []Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(list))
	for i, n := range list {
		resp[i] = mapToResponse(n)
	}
	return resp
}
