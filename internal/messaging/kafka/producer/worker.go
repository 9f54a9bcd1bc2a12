package producer

import (
	"context"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
	"go.uber.org/zap"
)

const batchSize = 50

type WorkerConfig struct {
	PollInterval time.Duration
	// Sent rows older than Retention are purged every PurgeInterval.
	// A zero Retention keeps them forever.
	Retention     time.Duration
	PurgeInterval time.Duration
}

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	cfg WorkerConfig,
) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = time.Hour
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	purge := time.NewTicker(cfg.PurgeInterval)
	defer purge.Stop()

	log.Info("outbox worker started",
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("retention", cfg.Retention),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := ProcessPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		case <-purge.C:
			if cfg.Retention <= 0 {
				continue
			}
			PurgeSentEvents(ctx, repo, time.Now().Add(-cfg.Retention), log)
		}
	}
}

// PurgeSentEvents removes delivered events processed before cutoff.
func PurgeSentEvents(ctx context.Context, repo kafka.OutboxRepository, cutoff time.Time, logger *zap.Logger) int64 {
	n, err := repo.PurgeSent(ctx, cutoff)
	if err != nil {
		logger.Error("purge sent outbox events failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.Info("purged sent outbox events", zap.Int64("count", n), zap.Time("before", cutoff))
	}
	return n
}

// ProcessPendingEvents publishes one batch and returns how many were sent.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (int, error) {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	logger.Info("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				logger.Warn("outbox event dead-lettered",
					zap.String("outbox_id", event.ID),
					zap.String("aggregate_id", event.AggregateID),
				)
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}
		sent++

		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
			zap.String("request_id", event.RequestID),
		)
	}

	return sent, nil
}
