package amqp

import (
	"encoding/json"
	"time"

	"moneywise/internal/core"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent describes a single mutation of the transaction store. It
// carries enough detail for the audit worker to log the change without
// calling back into the API.
type TransactionEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Title      string    `json:"title"`
	Type       core.Type `json:"type"`
	Category   string    `json:"category"`
	Amount     int64     `json:"amountCents"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewTransactionEvent builds an event from the mutated record.
func NewTransactionEvent(action string, txn core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		ID:         txn.ID,
		Action:     action,
		Title:      txn.Title,
		Type:       txn.Type,
		Category:   txn.Category,
		Amount:     txn.Amount.Cents,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
