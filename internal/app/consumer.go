package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/config"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka/consumer"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/notification"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroupPrefix = "sigead-"

func newReader(cfg config.Config, topic, group string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          topic,
		GroupID:        consumerGroupPrefix + group,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

func newMailer(cfg config.Config) notification.Mailer {
	if cfg.SMTP.Enabled() {
		return notification.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	}
	return notification.NewLogMailer()
}

// RunConsumer re-renders memos that failed inline and e-mails notifications.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connectDB(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	store := storage.NewLocalStore(cfg.PublicDir, cfg.PublicBaseURL)
	leaveService, _, _, _, err := newLeaveService(cfg, sqlDB, gormDB, store, kafka.NewOutboxRepository(sqlDB))
	if err != nil {
		return err
	}

	mailer := consumer.NotificationMailer{
		Mailer:   newMailer(cfg),
		Contacts: user.NewLookup(user.NewRepository(gormDB)),
		BaseURL:  cfg.PublicBaseURL,
	}
	if !cfg.SMTP.Enabled() {
		logger.Warn("SMTP not configured, notification e-mails are only logged")
	}

	memoReader := newReader(cfg, events.MemoRenderRequestedTopic, "memo-render")
	defer memoReader.Close()
	mailReader := newReader(cfg, events.NotificationCreatedTopic, "notification-email")
	defer mailReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeMemoRenderRequested(ctx, memoReader, leaveService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeNotificationCreated(ctx, mailReader, mailer, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
