package records

import (
	"sort"
	"strings"
)

// Record is one plain row as exchanged with a connector.
type Record map[string]any

// Clone returns a shallow copy of r. A nil record stays nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// Keys returns the record keys sorted alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Direction is the sort direction of one Order entry.
type Direction int

const (
	// Asc sorts smaller values first.
	Asc Direction = iota
	// Desc sorts larger values first.
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection maps "asc"/"desc" (case insensitive) to a Direction.
func ParseDirection(value string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "asc", "ascending":
		return Asc, true
	case "desc", "descending":
		return Desc, true
	default:
		return Asc, false
	}
}

// Order is one sort key with its direction.
type Order struct {
	Key       string
	Direction Direction
}

// Ascending orders by key, smallest first.
func Ascending(key string) Order { return Order{Key: key, Direction: Asc} }

// Descending orders by key, largest first.
func Descending(key string) Order { return Order{Key: key, Direction: Desc} }

// KeyType selects how connectors assign identifiers to new records.
type KeyType string

const (
	// KeyTypeNumber assigns one more than the current maximum identifier.
	KeyTypeNumber KeyType = "number"
	// KeyTypeUUID assigns a random UUID string.
	KeyTypeUUID KeyType = "uuid"
)

// DefaultIdentifier is the identifier key used when Config.Identifier is empty.
const DefaultIdentifier = "id"

// Change describes one attribute that differs from its persisted value.
// From is nil when the attribute was never persisted.
type Change struct {
	From any
	To   any
}
