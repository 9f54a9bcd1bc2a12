package main

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/app"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/config"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	applogger "github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/logger"

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

	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
