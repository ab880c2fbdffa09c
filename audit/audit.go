// Package audit records security-relevant service events (key generation,
// encryptions, reveals, compute calls) to pluggable sinks. Recording is
// best-effort: a failing sink is logged and skipped, it never fails the
// request that produced the event.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Event names recorded by the service. Compute operations are recorded as
// ComputePrefix plus the operation name, failures as the event name plus
// ".error".
const (
	EventStartup       = "startup"
	EventKeysGenerated = "keys.generated"
	EventEncrypt       = "encrypt"
	EventDecrypt       = "decrypt"
	EventDecryptDenied = "decrypt.denied"
	ComputePrefix      = "compute."
	ErrorSuffix        = ".error"
)

// Event is a single audit record.
type Event struct {
	Time     time.Time         `json:"time"`
	Name     string            `json:"event"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Sink receives audit events. Implementations must be safe for concurrent
// use.
type Sink interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// Logger fans audit events out to its sinks.
type Logger struct {
	log   *slog.Logger
	sinks []Sink
}

// NewLogger creates a logger writing to the given sinks.
func NewLogger(log *slog.Logger, sinks ...Sink) *Logger {
	return &Logger{log: log, sinks: sinks}
}

// Record timestamps the event and hands it to every sink.
func (l *Logger) Record(ctx context.Context, name string, metadata map[string]string) {
	ev := Event{
		Time:     time.Now().UTC(),
		Name:     name,
		Metadata: metadata,
	}
	for _, sink := range l.sinks {
		if err := sink.Record(ctx, ev); err != nil {
			l.log.Error("audit sink failed", "event", name, "err", err)
		}
	}
}

// Close closes every sink.
func (l *Logger) Close() error {
	var errs []error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MemorySink retains events in memory. It backs tests and configurations
// with no file or database sink.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the event.
func (s *MemorySink) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Close is a no-op.
func (s *MemorySink) Close() error {
	return nil
}
