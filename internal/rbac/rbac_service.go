package rbac

import (
	"context"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(ctx context.Context, role, resource, action string) (bool, error)
	Permissions(ctx context.Context, role string) ([]PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	loaded   bool
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx)
}

func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	for _, rp := range roleParents {
		if _, err := s.enforcer.AddGroupingPolicy(rp[0], rp[1]); err != nil {
			return err
		}
	}

	perms, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, p := range perms {
		if _, err := s.enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return err
		}
	}

	s.loaded = true
	s.logger.Info("rbac policy loaded", zap.Int("permissions", len(perms)))
	return nil
}

func (s *service) Enforce(ctx context.Context, role, resource, action string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.loadPolicyUnlocked(ctx); err != nil {
			return false, err
		}
	}

	role = strings.ToLower(strings.TrimSpace(role))
	allowed, err := s.enforcer.Enforce(role, resource, action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", resource),
			zap.String("action", action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", resource),
		zap.String("action", action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permissions(ctx context.Context, role string) ([]PermissionResponse, error) {
	roles := []string{role}
	for _, rp := range roleParents {
		if rp[0] == role {
			roles = append(roles, rp[1])
		}
	}

	var out []PermissionResponse
	for _, r := range roles {
		perms, err := s.repo.ListByRole(ctx, r)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			out = append(out, PermissionResponse{Role: p.Role, Resource: p.Resource, Action: p.Action})
		}
	}
	return out, nil
}
