package activity

import (
	"context"
	"strings"
)

// DefaultChannel is used when neither Config nor the event names a channel.
const DefaultChannel = "records"

// Config switches emission on and picks the channel stamped on events.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps channel and actor onto events before notifying hooks.
type Emitter struct {
	hooks   Hooks
	channel string
	enabled bool
}

// NewEmitter returns an emitter over the non nil entries of hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		hooks:   hooks.Compact(),
		channel: strings.TrimSpace(cfg.Channel),
	}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	e.enabled = cfg.Enabled && len(e.hooks) > 0
	return e
}

// Enabled reports whether Emit reaches any hook. A nil Emitter is disabled.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit fills the channel and any actor fields left empty from ctx, then
// notifies hooks.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if actor, ok := ActorFromContext(ctx); ok {
		event.Actor = event.Actor.fill(actor)
	}
	return e.hooks.Notify(ctx, event)
}
