// Package logbus is the per-session progress-event channel registry.
// One producer (the pipeline running under a session id) and one logical
// consumer (the streaming endpoint) share a buffered FIFO channel that
// lives exactly as long as someone cares about the session.
package logbus

import (
	"context"
	"sync"
	"time"

	"go_procure_backend/models"
)

const (
	// DefaultReceiveTimeout is how long a consumer waits before a
	// synthetic heartbeat is delivered instead of a real event.
	DefaultReceiveTimeout = 30 * time.Second

	channelBuffer = 256
)

// Bus owns the session registry. Construct one per process (or per test);
// there is no package-level instance.
type Bus struct {
	mu       sync.Mutex
	sessions map[string]chan models.LogEvent
}

func NewBus() *Bus {
	return &Bus{sessions: make(map[string]chan models.LogEvent)}
}

// Register creates the session's channel if it does not exist yet.
// Publishing alone never creates a session: after teardown, events for
// a dead session are dropped until some side registers it again.
func (b *Bus) Register(sessionID string) {
	if sessionID == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[sessionID]; !ok {
		b.sessions[sessionID] = make(chan models.LogEvent, channelBuffer)
	}
}

// Publish delivers an event to the session's channel in FIFO order.
// Unknown sessions and full buffers drop the event silently; the
// producer never blocks and never sees an error.
func (b *Bus) Publish(sessionID string, event models.LogEvent) {
	if sessionID == "" {
		return
	}
	b.mu.Lock()
	ch, ok := b.sessions[sessionID]
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- event:
	default:
	}
}

// Log formats and publishes a leveled event.
func (b *Bus) Log(sessionID, level, message string) {
	b.Publish(sessionID, models.NewLogEvent(level, message))
}

// Receive blocks until the next event for the session, registering it if
// needed. When timeout elapses without an event a heartbeat is returned
// and the stream stays alive. The second return is false only when ctx
// is done, which ends the subscription.
func (b *Bus) Receive(ctx context.Context, sessionID string, timeout time.Duration) (models.LogEvent, bool) {
	if timeout <= 0 {
		timeout = DefaultReceiveTimeout
	}
	b.mu.Lock()
	ch, ok := b.sessions[sessionID]
	if !ok {
		ch = make(chan models.LogEvent, channelBuffer)
		b.sessions[sessionID] = ch
	}
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-ch:
		return event, true
	case <-timer.C:
		return models.HeartbeatEvent(), true
	case <-ctx.Done():
		return models.LogEvent{}, false
	}
}

// Close tears the session down. Pending events are discarded and later
// publishes are dropped. Safe to call for unknown sessions.
func (b *Bus) Close(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}

// Active reports whether the session currently has a channel.
func (b *Bus) Active(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[sessionID]
	return ok
}
