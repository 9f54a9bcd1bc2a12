package main

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/app"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/bootstrap"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/config"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	applogger "github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := applogger.New(cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	if err := bootstrap.StartHTTPServer(r, bootstrap.DefaultServerConfig(cfg.Port), auditLogger, cleanup); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
