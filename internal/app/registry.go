package app

import (
	"context"
	"database/sql"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/auth"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/complaint"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/config"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/contracttype"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/rbac"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/rbac/infra"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/counter"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/upload"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// newMemoGenerator is shared by the API and the consumer so both render
// identical documents.
func newMemoGenerator(cfg config.Config, store storage.Store) (memo.Generator, error) {
	layout, err := memo.ParseLayout(cfg.Memo.Layout)
	if err != nil {
		return nil, err
	}
	renderer := memo.NewRenderer(memo.Config{
		Layout:      layout,
		LogoLeft:    cfg.Memo.LogoLeft,
		LogoRight:   cfg.Memo.LogoRight,
		Institution: cfg.Memo.Institution,
		SignerName:  cfg.Memo.SignerName,
		SignerTitle: cfg.Memo.SignerTitle,
	})
	return memo.NewGenerator(renderer, store), nil
}

func newLeaveService(cfg config.Config, db *sql.DB, gormDB *gorm.DB, store storage.Store, outbox kafka.OutboxRepository) (leave.Service, leave.Repository, memo.Generator, notification.Sink, error) {
	memos, err := newMemoGenerator(cfg, store)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sink := notification.NewSink(notification.NewRepository(gormDB), outbox)
	leaveRepo := leave.NewRepository(gormDB)
	svc := leave.NewService(db, leaveRepo, counter.NewRepository(gormDB), memos, sink,
		leave.WithLocation(cfg.TimeZone),
		leave.WithOutbox(outbox),
	)
	return svc, leaveRepo, memos, sink, nil
}

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	ctx := context.Background()
	store := storage.NewLocalStore(cfg.PublicDir, cfg.PublicBaseURL)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacRepo := rbac.NewRepository(gormDB)
	rbacService := rbac.NewService(rbacRepo, enforcer)
	if err := SeedPermissions(ctx, rbacRepo, rbacService); err != nil {
		return err
	}

	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	contractTypeRepo := contracttype.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	complaintRepo := complaint.NewRepository(gormDB)

	// --- Services ---
	contractTypeService := contracttype.NewService(db, contractTypeRepo, rdb)
	userService := user.NewService(userRepo, contractTypeService)
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	leaveService, leaveRepo, memos, sink, err := newLeaveService(cfg, db, gormDB, store, outboxRepo)
	if err != nil {
		return err
	}
	complaintService := complaint.NewService(db, complaintRepo, leaveRepo, memos, sink,
		complaint.WithLocation(cfg.TimeZone),
		complaint.WithOutbox(outboxRepo),
	)
	notificationService := notification.NewService(notificationRepo)
	uploadService := upload.NewService(store, cfg.UploadMaxBytes)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.JWTTTL, cfg.IsProduction())
	rbacHandler := rbac.NewHandler(rbacService)
	userHandler := user.NewHandler(userService)
	contractTypeHandler := contracttype.NewHandler(contractTypeService)
	leaveHandler := leave.NewHandler(leaveService)
	complaintHandler := complaint.NewHandler(complaintService)
	notificationHandler := notification.NewHandler(notificationService)
	uploadHandler := upload.NewHandler(uploadService)

	// --- Guards ---
	authMiddleware := middleware.AuthMiddleware(user.NewLookup(userRepo), cfg.JWTSecret, zap.L())
	createGuards := []gin.HandlerFunc{
		middleware.RateLimitByUser(rate.Limit(0.5), 5),
		middleware.Idempotency(rdb),
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMiddleware)
		rbac.RegisterRoutes(api, rbacHandler, authMiddleware)
		user.RegisterRoutes(api, userHandler, authMiddleware, rbacService)
		contracttype.RegisterRoutes(api, contractTypeHandler, authMiddleware, rbacService)
		leave.RegisterRoutes(api, leaveHandler, authMiddleware, rbacService, createGuards...)
		complaint.RegisterRoutes(api, complaintHandler, authMiddleware, rbacService, createGuards...)
		notification.RegisterRoutes(api, notificationHandler, authMiddleware)
		upload.RegisterRoutes(api, uploadHandler, authMiddleware, rbacService)
	}

	return nil
}
