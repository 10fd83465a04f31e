package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ledger/internal/core"

	"github.com/google/uuid"
)

// LedgerEventMessage is the wire form of a committed ledger event. Amounts
// travel as decimal strings and dates as ISO text so no precision is lost.
type LedgerEventMessage struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	UserID      int64     `json:"user_id"`
	EntityID    int64     `json:"entity_id"`
	CategoryID  int64     `json:"category_id,omitempty"`
	Amount      string    `json:"amount,omitempty"`
	Date        string    `json:"date,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEventMessage wraps e with a fresh message id.
func NewLedgerEventMessage(e core.Event) *LedgerEventMessage {
	ts := e.Occurred
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	msg := &LedgerEventMessage{
		ID:          uuid.NewString(),
		Kind:        string(e.Kind),
		UserID:      e.UserID,
		EntityID:    e.EntityID,
		CategoryID:  e.CategoryID,
		Description: e.Description,
		Timestamp:   ts,
	}
	if !e.Amount.IsZero() {
		msg.Amount = e.Amount.String()
	}
	if !e.Date.IsZero() {
		msg.Date = e.Date.String()
	}
	return msg
}

// Event converts the message back to a core event.
func (m *LedgerEventMessage) Event() (core.Event, error) {
	if m.Kind == "" {
		return core.Event{}, fmt.Errorf("message %s: missing kind", m.ID)
	}
	e := core.Event{
		Kind:        core.EventKind(m.Kind),
		UserID:      m.UserID,
		EntityID:    m.EntityID,
		CategoryID:  m.CategoryID,
		Description: m.Description,
		Occurred:    m.Timestamp,
	}
	if m.Amount != "" {
		amount, err := core.ParseAmount(m.Amount)
		if err != nil {
			return core.Event{}, fmt.Errorf("message %s: %w", m.ID, err)
		}
		e.Amount = amount
	}
	if m.Date != "" {
		d, err := core.ParseDate(m.Date)
		if err != nil {
			return core.Event{}, fmt.Errorf("message %s: %w", m.ID, err)
		}
		e.Date = d
	}
	return e, nil
}

// ToJSON converts message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON parses a message body.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
