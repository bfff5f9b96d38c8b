package models

import "time"

// Application is an internship application. Resume is the serving path of the
// uploaded file (/uploads/<name>) or nil when none was attached. Status is
// always "pending"; nothing in the system transitions it.
type Application struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Email       string  `json:"email" db:"email"`
	Phone       string  `json:"phone" db:"phone"`
	College     string  `json:"college" db:"college"`
	Year        string  `json:"year" db:"year"`
	Domain      string  `json:"domain" db:"domain"`
	Project     string  `json:"project" db:"project"`
	CoverLetter string  `json:"coverLetter" db:"cover_letter"`
	Resume      *string `json:"resume" db:"resume"`
	Status      string  `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ApplicationWithTxn decorates an application with the txnId of a purchase
// sharing the same email. The join happens at read time for the admin view and
// is never persisted.
type ApplicationWithTxn struct {
	Application
	TxnID string `json:"txnId,omitempty"`
}
