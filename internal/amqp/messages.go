package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
)

// ExpenseAddedMessage announces an expense that has been stored. It carries
// the full record; consumers never need to read the store.
type ExpenseAddedMessage struct {
	Amount    core.Amount   `json:"amount"`
	Category  core.Category `json:"category"`
	Date      core.Date     `json:"date"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewExpenseAddedMessage wraps e with the current time.
func NewExpenseAddedMessage(e core.Expense) *ExpenseAddedMessage {
	return &ExpenseAddedMessage{
		Amount:    e.Amount,
		Category:  e.Category,
		Date:      e.Date,
		Timestamp: time.Now().UTC(),
	}
}

// Expense returns the record carried by the message.
func (m *ExpenseAddedMessage) Expense() core.Expense {
	return core.Expense{Amount: m.Amount, Category: m.Category, Date: m.Date}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseAddedMessageFromJSON creates a message from JSON bytes. Only valid
// expenses are ever published, so anything else is rejected.
func ExpenseAddedMessageFromJSON(data []byte) (*ExpenseAddedMessage, error) {
	var msg ExpenseAddedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Expense().Validate(); err != nil {
		return nil, fmt.Errorf("invalid expense event: %w", err)
	}
	return &msg, nil
}
