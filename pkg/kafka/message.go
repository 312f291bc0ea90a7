package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Submission *SubmissionMessage
}

// SubmissionMessage is a customer record submitted for matching over Kafka.
// The payload mirrors the REST submission body plus an envelope.
type SubmissionMessage struct {
	RequestID   string                               `json:"request_id,omitempty"`
	Source      string                               `json:"source,omitempty"`
	SubmittedAt time.Time                            `json:"submitted_at,omitempty"`
	Customer    models.CreateIncomingCustomerRequest `json:"customer"`
}

// ParseSubmission parses the message value as a customer submission
func (m *IncomingMessage) ParseSubmission() error {
	var msg SubmissionMessage
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return err
	}
	if msg.Customer.CompanyName == "" {
		return fmt.Errorf("submission on %s at offset %d has no company_name", m.Topic, m.Offset)
	}
	m.Submission = &msg
	return nil
}

// GetRequestID returns the request ID from the payload or headers
func (m *IncomingMessage) GetRequestID() string {
	if m.Submission != nil && m.Submission.RequestID != "" {
		return m.Submission.RequestID
	}
	return m.Headers["request_id"]
}

// GetSource returns the submitting system, falling back to headers
func (m *IncomingMessage) GetSource() string {
	if m.Submission != nil && m.Submission.Source != "" {
		return m.Submission.Source
	}
	return m.Headers["source"]
}

// ToIncomingCustomer builds the record to persist from the submission
func (m *IncomingMessage) ToIncomingCustomer() *models.IncomingCustomer {
	record := m.Submission.Customer.ToRecord()
	if record.RequestID == nil {
		if id := m.GetRequestID(); id != "" {
			record.RequestID = &id
		}
	}

	return record
}
