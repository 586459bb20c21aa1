// Package notify publishes domain events after their transaction commits.
package notify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects, relative to the configured prefix.
const (
	SubjectEventReviewed     = "event.reviewed"
	SubjectRequestResolved   = "request.resolved"
	SubjectFeedbackEscalated = "feedback.escalated"
	SubjectPollCreated       = "poll.created"
)

// EventReviewed is sent when an admin approves or rejects an event.
type EventReviewed struct {
	EventID    int64  `json:"eventId"`
	ClubID     int64  `json:"clubId"`
	Status     string `json:"status"`
	ReviewedBy int64  `json:"reviewedBy"`
}

// RequestResolved is sent when a join or leave request is approved or rejected.
type RequestResolved struct {
	RequestID int64  `json:"requestId"`
	Kind      string `json:"kind"`
	StudentID int64  `json:"studentId"`
	ClubID    int64  `json:"clubId"`
	Status    string `json:"status"`
}

// FeedbackEscalated is sent when feedback reaches the admins.
type FeedbackEscalated struct {
	FeedbackID int64  `json:"feedbackId"`
	ClubID     *int64 `json:"clubId,omitempty"`
	Status     string `json:"status"`
}

// PollCreated is sent once per created poll.
type PollCreated struct {
	PollID int64  `json:"pollId"`
	Scope  string `json:"scope"`
	ClubID *int64 `json:"clubId,omitempty"`
}

// Publisher sends a JSON message on subject.
type Publisher interface {
	Publish(subject string, message any) error
	Close() error
}

// NATSPublisher publishes on "<prefix>.<subject>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("clubhub-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}

	logger.Info().Str("url", url).Str("prefix", prefix).Msg("NATS publisher initialized")
	return &NATSPublisher{conn: nc, prefix: prefix, logger: logger}, nil
}

// Subject returns the full subject for a relative one.
func (p *NATSPublisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

func (p *NATSPublisher) Publish(subject string, message any) error {
	data, err := json.Marshal(message)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to marshal message")
		return err
	}

	full := p.Subject(subject)
	if err := p.conn.Publish(full, data); err != nil {
		p.logger.Error().Err(err).Str("subject", full).Msg("failed to send message to NATS")
		return err
	}

	p.logger.Debug().Str("subject", full).Msg("message sent to NATS")
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Flush(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to flush NATS connection")
	}
	p.conn.Close()
	return nil
}

// Nop drops every message.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }
func (Nop) Close() error              { return nil }

// Message is one publication captured by Recorder.
type Message struct {
	Subject string
	Payload any
}

// Recorder keeps published messages in memory for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Publish(subject string, message any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Subject: subject, Payload: message})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Messages returns a copy of what was published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Subjects lists the subjects published so far, in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Subject
	}
	return out
}
