package audit

import (
	"log/slog"
	"time"
)

// Publisher hands events to the worker without blocking the search path. A
// full inbox drops the event and logs it: search availability outranks audit
// completeness for this trail.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewPublisher wraps the worker inbox.
func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit queues the event, stamping the time if unset. Safe on a nil receiver
// so callers need no audit wiring in tests.
func (p *Publisher) Emit(event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event", "domain", event.Domain)
	}
}
