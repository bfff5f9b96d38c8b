package models

import (
	"encoding/json"
	"time"
)

// Purchase is a confirmed checkout. Monetary fields and the student/items
// payloads are persisted exactly as the client sent them; the server only adds
// ID and CreatedAt. Student and Items stay raw so a list call returns them
// byte-for-byte.
type Purchase struct {
	ID       string          `json:"id" db:"id"`
	TxnID    string          `json:"txnId" db:"txn_id"`
	Student  json.RawMessage `json:"student" db:"student"`
	Items    json.RawMessage `json:"items" db:"items"`
	Subtotal float64         `json:"subtotal" db:"subtotal"`
	Taxes    float64         `json:"taxes" db:"taxes"`
	Total    float64         `json:"total" db:"total"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// StudentEmail digs the email field out of the raw student payload.
// Returns "" when the payload has no usable email.
func (p *Purchase) StudentEmail() string {
	var s struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(p.Student, &s); err != nil {
		return ""
	}
	return s.Email
}
