package notification_test

import (
	"context"
	"testing"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	notificationerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	gdb, _ := setupNotificationDB(t)
	repo := notification.NewRepository(gdb)
	sink := notification.NewSink(repo, nil, zap.NewNop())
	svc := notification.NewService(repo, zap.NewNop())

	owner := uuid.NewString()
	other := uuid.NewString()

	first, err := sink.Emit(ctx, notification.RequestCreated(owner, "r1", "EXP-2024-0001"))
	assert.NoError(t, err)
	_, err = sink.Emit(ctx, notification.RequestCreated(owner, "r2", "EXP-2024-0002"))
	assert.NoError(t, err)
	_, err = sink.Emit(ctx, notification.RequestCreated(other, "r3", "EXP-2024-0003"))
	assert.NoError(t, err)

	t.Run("lists only own notifications", func(t *testing.T) {
		list, err := svc.GetAll(ctx, owner, false)
		assert.NoError(t, err)
		assert.Len(t, list, 2)
		assert.NotEmpty(t, list[0].MessageHTML)
	})

	t.Run("set read updates unread count", func(t *testing.T) {
		resp, err := svc.SetRead(ctx, owner, first.ID.String(), true)
		assert.NoError(t, err)
		assert.True(t, resp.Read)
		assert.NotNil(t, resp.ReadAt)

		count, err := svc.UnreadCount(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)

		unread, err := svc.GetAll(ctx, owner, true)
		assert.NoError(t, err)
		assert.Len(t, unread, 1)
	})

	t.Run("negative cannot touch other user's notification", func(t *testing.T) {
		_, err := svc.SetRead(ctx, other, first.ID.String(), false)
		assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		_, err := svc.SetRead(ctx, owner, "abc", true)
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidNotificationID)
	})

	t.Run("mark all read", func(t *testing.T) {
		updated, err := svc.MarkAllRead(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		count, err := svc.UnreadCount(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)

		count, err = svc.UnreadCount(ctx, other)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
