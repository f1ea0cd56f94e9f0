package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OpCreated = "created"
	OpDeleted = "deleted"
)

// TransactionEvent is the lightweight message published on every
// transaction mutation. It carries only identifiers; consumers fetch
// the full record from the store, so a stale or replayed message can
// never overwrite newer data.
type TransactionEvent struct {
	EventID       string    `json:"event_id"`
	Op            string    `json:"op"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(op, transactionID string) *TransactionEvent {
	return &TransactionEvent{
		EventID:       uuid.NewString(),
		Op:            op,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func (e *TransactionEvent) Validate() error {
	if e.Op != OpCreated && e.Op != OpDeleted {
		return fmt.Errorf("unknown op %q", e.Op)
	}
	if e.TransactionID == "" {
		return fmt.Errorf("missing transaction id")
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
