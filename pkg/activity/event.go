package activity

import (
	"fmt"
	"strings"
	"time"
)

// Verb names a record lifecycle transition.
type Verb string

// Verbs emitted for record writes.
const (
	VerbCreated Verb = "records.created"
	VerbUpdated Verb = "records.updated"
	VerbDeleted Verb = "records.deleted"
)

// Change is the before and after value of one attribute.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Event describes one committed record write.
type Event struct {
	Verb     Verb
	Table    string
	RecordID string
	Actor    Actor
	Channel  string
	// Attributes is the record as written. Empty for deletes.
	Attributes map[string]any
	// Changes is set on updates only.
	Changes    map[string]Change
	Metadata   map[string]any
	OccurredAt time.Time
}

// RecordCreated builds the event for an inserted record.
func RecordCreated(table string, id any, attributes map[string]any) Event {
	return Event{
		Verb:       VerbCreated,
		Table:      table,
		RecordID:   formatID(id),
		Attributes: attributes,
	}
}

// RecordUpdated builds the event for an updated record.
func RecordUpdated(table string, id any, attributes map[string]any, changes map[string]Change) Event {
	return Event{
		Verb:       VerbUpdated,
		Table:      table,
		RecordID:   formatID(id),
		Attributes: attributes,
		Changes:    changes,
	}
}

// RecordDeleted builds the event for a removed record.
func RecordDeleted(table string, id any) Event {
	return Event{Verb: VerbDeleted, Table: table, RecordID: formatID(id)}
}

// Complete reports whether the event names a verb, a table and a record.
func (e Event) Complete() bool {
	return e.Verb != "" && e.Table != "" && e.RecordID != ""
}

// Normalize returns a copy with identifiers trimmed, maps copied and
// OccurredAt stamped in UTC when unset.
func (e Event) Normalize() Event {
	out := e
	out.Verb = Verb(strings.TrimSpace(string(e.Verb)))
	out.Table = strings.TrimSpace(e.Table)
	out.RecordID = strings.TrimSpace(e.RecordID)
	out.Channel = strings.TrimSpace(e.Channel)
	out.Actor = e.Actor.trimmed()
	out.Attributes = copyMap(e.Attributes)
	out.Metadata = copyMap(e.Metadata)
	if len(e.Changes) > 0 {
		out.Changes = make(map[string]Change, len(e.Changes))
		for key, change := range e.Changes {
			out.Changes[key] = change
		}
	} else {
		out.Changes = nil
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now().UTC()
	}
	return out
}

func formatID(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

func copyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
