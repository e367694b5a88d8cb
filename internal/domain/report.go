package domain

import (
	"encoding/json"
	"time"
)

type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

type ReportReceipt struct {
	ID        string    `json:"emailId"`
	Recipient string    `json:"recipient"`
	Method    string    `json:"method"` // resend|stored
	Sent      bool      `json:"sent"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is one entry in the data log.
type Record struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
