package app

import (
	"context"
	"fmt"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/complaint"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/contracttype"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/rbac"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&contracttype.ContractType{},
		&user.User{},
		&leave.LeaveRequest{},
		&complaint.Complaint{},
		&notification.Notification{},
		&counter.SequenceCounter{},
		&kafka.OutboxRecord{},
		&rbac.RolePermission{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedPermissions stores the default role permissions and loads them into
// the enforcer.
func SeedPermissions(ctx context.Context, repo rbac.Repository, svc rbac.Service) error {
	if err := repo.Seed(ctx, rbac.DefaultPermissions()); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	return svc.LoadPolicy(ctx)
}
