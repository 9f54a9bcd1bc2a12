package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	// UpdateReview writes the review fields only if the row still has
	// fromStatus, returning gorm.ErrRecordNotFound otherwise.
	UpdateReview(ctx context.Context, l *LeaveRequest, fromStatus string) error
	UpdateMemoURL(ctx context.Context, id, url string, at time.Time) error
	Delete(ctx context.Context, id string) error
	FindOwnerNames(ctx context.Context, userIDs []string) (map[string]string, error)
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

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]LeaveRequest, error) {
	var list []LeaveRequest
	q := r.conn(ctx).Scopes(visibility.Scope(viewer))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) UpdateReview(ctx context.Context, l *LeaveRequest, fromStatus string) error {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ?", l.ID, fromStatus).
		Updates(map[string]any{
			"status":      l.Status,
			"comments":    l.Comments,
			"memo_url":    l.MemoURL,
			"reviewed_by": l.ReviewedBy,
			"reviewed_at": l.ReviewedAt,
			"updated_at":  l.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateMemoURL(ctx context.Context, id, url string, at time.Time) error {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"memo_url": url, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&LeaveRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindOwnerNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   string
		Name string
	}
	err := r.conn(ctx).
		Table("usuarios").
		Select("id, name").
		Where("id IN ?", userIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
