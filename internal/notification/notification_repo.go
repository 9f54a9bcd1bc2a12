package notification

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	FindAllByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	FindByIDAndUser(ctx context.Context, userID, id string) (*Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	SetRead(ctx context.Context, userID, id string, read bool, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn routes statements through the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.conn(ctx).Create(n).Error
}

func (r *repository) FindAllByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	var list []Notification
	q := r.conn(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) FindByIDAndUser(ctx context.Context, userID, id string) (*Notification, error) {
	var n Notification
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		First(&n, "id = ?", id).Error
	return &n, err
}

func (r *repository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *repository) SetRead(ctx context.Context, userID, id string, read bool, at time.Time) error {
	var readAt *time.Time
	if read {
		readAt = &at
	}
	res := r.conn(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"read": read, "read_at": readAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.conn(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
