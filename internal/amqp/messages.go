package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEvent announces that a ledger command was applied. It carries no
// amounts; consumers that need the data read it from the shared store.
type LedgerEvent struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transaction_id,omitempty"`
	LedgerSize    int       `json:"ledger_size"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(kind, transactionID string, ledgerSize int) *LedgerEvent {
	return &LedgerEvent{
		Kind:          kind,
		TransactionID: transactionID,
		LedgerSize:    ledgerSize,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by Publish.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
