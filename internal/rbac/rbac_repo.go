package rbac

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListAll(ctx context.Context) ([]RolePermission, error)
	ListByRole(ctx context.Context, role string) ([]RolePermission, error)
	// Seed inserts rows that are not present yet.
	Seed(ctx context.Context, rows []RolePermission) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAll(ctx context.Context) ([]RolePermission, error) {
	var result []RolePermission
	err := r.db.WithContext(ctx).Order("role, resource, action").Find(&result).Error
	return result, err
}

func (r *repository) ListByRole(ctx context.Context, role string) ([]RolePermission, error) {
	var result []RolePermission
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("resource, action").
		Find(&result).Error
	return result, err
}

func (r *repository) Seed(ctx context.Context, rows []RolePermission) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
