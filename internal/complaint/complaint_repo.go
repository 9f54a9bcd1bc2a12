package complaint

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *Complaint) error
	FindAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]Complaint, error)
	FindByID(ctx context.Context, id string) (*Complaint, error)
	ExistsForRequest(ctx context.Context, requestID, userID string) (bool, error)
	// UpdateResolution only touches rows still in fromStatus.
	UpdateResolution(ctx context.Context, c *Complaint, fromStatus string) error
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

func (r *repository) Create(ctx context.Context, c *Complaint) error {
	return r.conn(ctx).Create(c).Error
}

func (r *repository) FindAll(ctx context.Context, viewer visibility.Viewer, filter ListFilter) ([]Complaint, error) {
	var list []Complaint
	q := r.conn(ctx).Scopes(visibility.Scope(viewer))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.RequestID != "" {
		q = q.Where("request_id = ?", filter.RequestID)
	}
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Complaint, error) {
	var c Complaint
	err := r.conn(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) ExistsForRequest(ctx context.Context, requestID, userID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Complaint{}).
		Where("request_id = ? AND user_id = ?", requestID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateResolution(ctx context.Context, c *Complaint, fromStatus string) error {
	now := c.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res := r.conn(ctx).
		Model(&Complaint{}).
		Where("id = ? AND status = ?", c.ID, fromStatus).
		Updates(map[string]any{
			"status":      c.Status,
			"response":    c.Response,
			"resolved_by": c.ResolvedBy,
			"resolved_at": c.ResolvedAt,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
