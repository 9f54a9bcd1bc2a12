package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave"
	leaveerrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/leave/errors"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func ConsumeMemoRenderRequested(
	ctx context.Context,
	reader MessageReader,
	leaveService leave.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.memo_render")
	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) Outcome {
		return HandleMemoRenderRequested(ctx, leaveService, msg, log)
	})
}

// HandleMemoRenderRequested rebuilds the memo of an approved request.
// Requests that vanished or are no longer approved are skipped.
func HandleMemoRenderRequested(ctx context.Context, leaveService leave.Service, msg kafkago.Message, log *zap.Logger) Outcome {
	var event events.MemoRenderRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode memo render event failed", zap.Error(err))
		return Skip
	}
	if event.RequestID == "" {
		log.Warn("memo render event without request id", zap.Int64("offset", msg.Offset))
		return Skip
	}

	resp, err := leaveService.RegenerateMemo(ctx, event.RequestID)
	if err != nil {
		if errors.Is(err, leaveerrors.ErrLeaveNotFound) || errors.Is(err, leaveerrors.ErrMemoRequiresApproval) {
			log.Warn("memo render skipped",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			return Skip
		}

		log.Error("regenerate memo failed",
			zap.String("request_id", event.RequestID),
			zap.String("reason", event.Reason),
			zap.Error(err),
		)
		return Retry
	}

	fields := []zap.Field{zap.String("request_id", event.RequestID)}
	if resp.MemoURL != nil {
		fields = append(fields, zap.String("memo_url", *resp.MemoURL))
	}
	log.Info("memo rendered", fields...)
	return Done
}
