// Package notify publishes audio-created events to NATS for downstream
// consumers. The publisher is optional: a nil *Publisher is a no-op.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
)

// AudioCreatedEvent announces one generated audio file.
type AudioCreatedEvent struct {
	AudioURL    string    `json:"audio_url"`
	Voice       string    `json:"voice"`
	Duration    float64   `json:"duration"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher publishes audio-created events on a fixed subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials the NATS server and returns a publisher for the subject.
func Connect(url, subject string, log *logger.Logger) (*Publisher, error) {
	conn, connectErr := nats.Connect(url)
	if connectErr != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, connectErr)
	}

	log.Info("Connected to NATS at %s", url)

	return NewPublisher(conn, subject), nil
}

// NewPublisher wraps an existing connection. Used by tests.
func NewPublisher(conn *nats.Conn, subject string) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
	}
}

// Publish sends the event. A nil receiver does nothing.
func (p *Publisher) Publish(event AudioCreatedEvent) error {
	if p == nil {
		return nil
	}

	data, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal audio created event: %w", marshalErr)
	}

	publishErr := p.conn.Publish(p.subject, data)
	if publishErr != nil {
		return fmt.Errorf("failed to publish audio created event: %w", publishErr)
	}

	return nil
}

// Close drains the underlying connection. A nil receiver does nothing.
func (p *Publisher) Close() {
	if p == nil {
		return
	}

	p.conn.Close()
}
