package contracttype

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=contracttype_repo.go -destination=mock/contracttype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, ct *ContractType) error
	FindAll(ctx context.Context) ([]ContractType, error)
	FindByID(ctx context.Context, id string) (*ContractType, error)
	Update(ctx context.Context, ct *ContractType) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, ct *ContractType) error {
	return r.conn(ctx).Create(ct).Error
}

func (r *repository) FindAll(ctx context.Context) ([]ContractType, error) {
	var items []ContractType
	err := r.conn(ctx).Order("name ASC").Find(&items).Error
	return items, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*ContractType, error) {
	var ct ContractType
	err := r.conn(ctx).First(&ct, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *repository) Update(ctx context.Context, ct *ContractType) error {
	return r.conn(ctx).Save(ct).Error
}
