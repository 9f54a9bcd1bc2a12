package contracttype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	contracttypeerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/contracttype/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	CacheKeyAll = "tipos_contrato:all"
	cacheTTL    = 30 * time.Minute
	timeLayout  = "2006-01-02 15:04:05"
)

//go:generate mockgen -source=contracttype_service.go -destination=mock/contracttype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateContractTypeRequest) (ContractTypeResponse, error)
	GetAll(ctx context.Context) ([]ContractTypeResponse, error)
	GetByID(ctx context.Context, id string) (ContractTypeResponse, error)
	Update(ctx context.Context, id string, req UpdateContractTypeRequest) (ContractTypeResponse, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewService caches the catalog in Redis when rdb is not nil.
func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("contracttype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("contracttype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateContractTypeRequest) (ContractTypeResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ContractTypeResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	ct := &ContractType{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}

	if err := s.repo.WithTx(tx).Create(ctx, ct); err != nil {
		return ContractTypeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return ContractTypeResponse{}, apperror.Storage(err)
	}

	s.invalidate(ctx)
	return mapToResponse(*ct), nil
}

func (s *service) GetAll(ctx context.Context) ([]ContractTypeResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, CacheKeyAll).Result()
		if err == nil {
			var resp []ContractTypeResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(CacheKeyAll, func() (interface{}, error) {
		items, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(items)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, CacheKeyAll, jsonData, cacheTTL).Err(); err != nil {
					s.logger.Warn("failed to cache contract types", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, apperror.Storage(err)
	}

	return v.([]ContractTypeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ContractTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ContractTypeResponse{}, contracttypeerrors.ErrInvalidID
	}

	ct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ContractTypeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*ct), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateContractTypeRequest) (ContractTypeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ContractTypeResponse{}, contracttypeerrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ContractTypeResponse{}, apperror.Storage(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ct, err := qtx.FindByID(ctx, id)
	if err != nil {
		return ContractTypeResponse{}, mapRepositoryError(err)
	}

	ct.Name = strings.TrimSpace(req.Name)
	ct.Description = strings.TrimSpace(req.Description)
	if req.IsActive != nil {
		ct.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, ct); err != nil {
		return ContractTypeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return ContractTypeResponse{}, apperror.Storage(err)
	}

	s.invalidate(ctx)
	return mapToResponse(*ct), nil
}

// Exists lets the user module validate contract_type_id.
func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, CacheKeyAll).Err(); err != nil {
		s.logger.Error("failed to invalidate cache", zap.String("key", CacheKeyAll), zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return contracttypeerrors.ErrContractTypeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return contracttypeerrors.ErrDuplicateName
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint failed: tipos_contrato.name") {
		return contracttypeerrors.ErrDuplicateName
	}

	return apperror.Storage(err)
}

func mapToResponse(ct ContractType) ContractTypeResponse {
	return ContractTypeResponse{
		ID:          ct.ID.String(),
		Name:        ct.Name,
		Description: ct.Description,
		IsActive:    ct.IsActive,
		CreatedAt:   ct.CreatedAt.Format(timeLayout),
		UpdatedAt:   ct.UpdatedAt.Format(timeLayout),
	}
}

func mapToListResponse(items []ContractType) []ContractTypeResponse {
	res := make([]ContractTypeResponse, len(items))
	for i, ct := range items {
		res[i] = mapToResponse(ct)
	}
	return res
}
