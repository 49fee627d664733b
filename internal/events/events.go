package events

import (
	"context"

	"github.com/rs/zerolog"
)

// Event names mirror the realtime channel exposed to frontends.
const (
	TrackerCreated  = "tracker:created"
	TrackerUpdated  = "tracker:updated"
	TrackerDeleted  = "tracker:deleted"
	TrackerArchived = "tracker:archived"
	SessionStarted  = "session:started"
	SessionStopped  = "session:stopped"
	StatsUpdated    = "stats:updated"
)

// Event is a lifecycle notification for external listeners.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher delivers events best-effort. Implementations must never block
// the caller on delivery problems and must never surface publish failures
// as errors; a failed publish is logged and dropped.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// LogPublisher writes events to the debug log. Used when no broker is
// configured.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, event Event) {
	p.Log.Debug().Str("event", event.Name).Interface("payload", event.Payload).Msg("event")
}
