// Package usersink forwards record events to a go-users activity sink.
package usersink

import (
	"context"

	"github.com/goliatone/go-records/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts a go-users ActivitySink to activity.Hook. The table becomes
// the object type and the record id the object id.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify logs event on the sink. Actor identifiers that are not UUIDs are
// recorded as uuid.Nil.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalize()
	if !event.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, ActivityRecord(event))
}

// ActivityRecord maps a normalized event onto the go-users record shape.
// Data carries attributes, changes as {"from", "to"} pairs, and any extra
// metadata keys.
func ActivityRecord(event activity.Event) usertypes.ActivityRecord {
	return usertypes.ActivityRecord{
		ActorID:    parseUUID(event.Actor.ActorID),
		UserID:     parseUUID(event.Actor.UserID),
		TenantID:   parseUUID(event.Actor.TenantID),
		Verb:       string(event.Verb),
		ObjectType: event.Table,
		ObjectID:   event.RecordID,
		Channel:    event.Channel,
		Data:       data(event),
		OccurredAt: event.OccurredAt,
	}
}

func data(event activity.Event) map[string]any {
	out := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		out[key] = value
	}
	if len(event.Attributes) > 0 {
		out["attributes"] = event.Attributes
	}
	if len(event.Changes) > 0 {
		changes := make(map[string]any, len(event.Changes))
		for key, change := range event.Changes {
			changes[key] = map[string]any{"from": change.From, "to": change.To}
		}
		out["changes"] = changes
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseUUID(input string) uuid.UUID {
	id, err := uuid.Parse(input)
	if err != nil {
		return uuid.Nil
	}
	return id
}
