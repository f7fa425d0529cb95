package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation is the kind of change a TransactionEvent announces.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// TransactionEvent announces that a transaction row changed. It carries only
// the storage id; consumers read the current row back from the store.
type TransactionEvent struct {
	ID        int64     `json:"id"`
	Op        Operation `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time
func NewTransactionEvent(id int64, op Operation) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// Validate rejects events a consumer cannot act on.
func (m *TransactionEvent) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("invalid transaction id %d", m.ID)
	}
	switch m.Op {
	case OpUpsert, OpDelete:
		return nil
	default:
		return fmt.Errorf("unknown operation %q", m.Op)
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and validates an event.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
