package events

import "time"

const (
	MemoRenderRequestedTopic = "sigead.memo.render.requested.v1"
	MemoRenderRequestedType  = "memo.render.requested"
)

// MemoRenderRequestedEvent asks the consumer to (re)build the memo of an
// approved request after an inline render failed.
type MemoRenderRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
