package app

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/config"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/connection"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure, migrates the schema and mounts every
// module on router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	log := zap.L().Named("app")

	gormDB, err := connectDB(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.MaxRetries)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Info("redis connection established")

	cleanup := func() {
		_ = rdb.Close()
		_ = sqlDB.Close()
	}

	if err := Migrate(gormDB); err != nil {
		cleanup()
		return nil, err
	}

	metrics := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
	router.Use(
		middleware.RequestID(),
		corsMiddleware(cfg.CORSAllowedOrigins),
		metrics.Middleware(),
		middleware.ContextLogger(zap.L()),
		compression(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", healthHandler(gormDB, rdb))
	router.Static("/pdf", filepath.Join(cfg.PublicDir, "pdf"))
	router.Static("/uploads", filepath.Join(cfg.PublicDir, "uploads"))

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}

func connectDB(cfg config.Config) (*gorm.DB, error) {
	return connection.ConnectGORMWithRetry(connection.DBConfig{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
		TimeZone: cfg.TimeZone.String(),
	}, cfg.MaxRetries)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.IdempotencyHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// compression skips payloads that are already compressed and /metrics,
// which promhttp encodes itself.
func compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedExtensions([]string{".pdf", ".png", ".jpg", ".jpeg", ".docx"}),
		gzip.WithExcludedPaths([]string{"/metrics"}),
	)
}

func healthHandler(gormDB *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true

		if sqlDB, err := gormDB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "down"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		}

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "Servicio no disponible", checks)
			return
		}
		response.Success(c, http.StatusOK, checks, nil)
	}
}
