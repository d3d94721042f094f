// Package audit records security-relevant policy firings: vendor failures,
// malformed vendor payloads, suspiciously favorable scores, and inconsistent
// applicant data. Events are emitted from request handling and fanned out to
// one or more append-only sinks.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Event is a single audit record. Keep it transport-agnostic so stores and
// sinks can fan out. Detail may embed raw request and vendor values; events
// never reach applicants.
type Event struct {
	ID          string
	Timestamp   time.Time
	Mode        string
	Stage       string
	Code        string
	ApplicantID string
	Detail      string
	RequestID   string
	Client      string
}

// Text renders the event as a single log line body, matching the
// `<unix_timestamp> <event_text>` audit stream format used by the file sink.
func (e Event) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s mode=%s stage=%s applicant_id=%q %s", e.Code, e.Mode, e.Stage, e.ApplicantID, e.Detail)
	if e.RequestID != "" {
		fmt.Fprintf(&b, " request_id=%s", e.RequestID)
	}
	if e.Client != "" {
		fmt.Fprintf(&b, " client=%q", e.Client)
	}
	return b.String()
}

// Sink accepts audit events. Implementations must support concurrent appends
// without interleaving partial records: each event is one atomic write.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards events to a sink so emitting code does not
// repeat the bookkeeping.
type Publisher struct {
	sink Sink
}

// NewPublisher wraps a sink.
func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

// Emit fills in the timestamp when unset and appends the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}
