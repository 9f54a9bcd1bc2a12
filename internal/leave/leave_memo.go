package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/events"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/memo"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/messaging/kafka"
)

const memoPendingWarning = "El memorándum no pudo generarse y se reintentará automáticamente"

// MemoSnapshot freezes the fields printed on the memo of l.
func MemoSnapshot(l LeaveRequest, holderName string, issuedAt time.Time) memo.Snapshot {
	if holderName == "" {
		holderName = l.Email
	}
	return memo.Snapshot{
		ExpedienteNumber: l.ExpedienteNumber,
		SubjectType:      l.Type,
		Date:             issuedAt,
		HolderName:       holderName,
		Position:         l.Position,
		Reason:           l.Reason,
		PaidLeave:        l.PaidLeave,
		PeriodStart:      l.StartDate,
		PeriodEnd:        l.EndDate,
	}
}

// QueueMemoRender records a memo.render.requested event in tx so the consumer
// can rebuild a memo that failed inline.
func QueueMemoRender(ctx context.Context, outbox kafka.OutboxRepository, tx *sql.Tx, requestID, reason, requestedBy string, at time.Time) error {
	if outbox == nil {
		return nil
	}
	ev, err := kafka.NewEvent(ctx, "solicitud", requestID, events.MemoRenderRequestedType, events.MemoRenderRequestedTopic,
		events.MemoRenderRequestedEvent{
			EventType:   events.MemoRenderRequestedType,
			RequestID:   requestID,
			Reason:      reason,
			RequestedBy: requestedBy,
			OccurredAt:  at,
		})
	if err != nil {
		return err
	}
	if tx != nil {
		outbox = outbox.WithTx(tx)
	}
	return outbox.Create(ctx, ev)
}
