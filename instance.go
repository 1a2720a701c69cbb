package records

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-records/internal/hydrate"
	"github.com/goliatone/go-records/layering"
	"github.com/goliatone/go-records/pkg/activity"
)

// Instance is one record plus its change tracking state. attributes only
// ever holds Model keys; persistent is nil until the record has been stored
// or loaded.
//
// An Instance is not safe for concurrent mutation.
type Instance struct {
	model      *Model
	id         any
	attributes Record
	persistent Record
}

// ID returns the identifier, nil while the instance is new.
func (i *Instance) ID() any { return i.id }

// Model returns the Model the instance was built or loaded through.
func (i *Instance) Model() *Model { return i.model }

// IsNew reports whether no identifier has been assigned yet.
func (i *Instance) IsNew() bool { return i.id == nil }

// IsPersistent reports whether an identifier has been assigned.
func (i *Instance) IsPersistent() bool { return i.id != nil }

// Attributes returns a copy of the current attributes.
func (i *Instance) Attributes() Record { return cloneRecord(i.attributes) }

// PersistentAttributes returns a copy of the last stored attributes, or nil.
func (i *Instance) PersistentAttributes() Record { return cloneRecord(i.persistent) }

// Record returns the attributes together with the identifier, the shape
// connectors store.
func (i *Instance) Record() Record {
	out := cloneRecord(i.attributes)
	if out == nil {
		out = Record{}
	}
	if i.id != nil {
		out[i.model.identifier] = i.id
	}
	return out
}

// Get returns one attribute.
func (i *Instance) Get(key string) (any, bool) {
	value, ok := i.attributes[key]
	return value, ok
}

// IsChanged reports whether any attribute differs from its stored value.
func (i *Instance) IsChanged() bool {
	return len(i.Changes()) > 0
}

// Changes maps every changed key to its stored and current value.
func (i *Instance) Changes() map[string]Change {
	changes := map[string]Change{}
	for key, value := range i.attributes {
		if i.persistent == nil {
			changes[key] = Change{To: value}
			continue
		}
		stored, ok := i.persistent[key]
		if !ok || !sameValue(stored, value) {
			changes[key] = Change{From: stored, To: value}
		}
	}
	for key, stored := range i.persistent {
		if _, ok := i.attributes[key]; !ok {
			changes[key] = Change{From: stored}
		}
	}
	return changes
}

// Assign merges attrs into the attributes. Keys outside the Model keys are
// ignored.
func (i *Instance) Assign(attrs Record) *Instance {
	for key, value := range attrs {
		i.Set(key, value)
	}
	return i
}

// Set assigns one attribute. Keys outside the Model keys are ignored.
func (i *Instance) Set(key string, value any) *Instance {
	if !i.model.scope.HasKey(key) {
		return i
	}
	if i.attributes == nil {
		i.attributes = Record{}
	}
	i.attributes[key] = layering.Clone(value)
	return i
}

// RevertChange restores key to its stored value, removing it when it was
// never stored.
func (i *Instance) RevertChange(key string) *Instance {
	stored, ok := i.persistent[key]
	if !ok {
		delete(i.attributes, key)
		return i
	}
	i.attributes[key] = layering.Clone(stored)
	return i
}

// RevertChanges restores every attribute to its stored value.
func (i *Instance) RevertChanges() *Instance {
	i.attributes = cloneRecord(i.persistent)
	if i.attributes == nil {
		i.attributes = Record{}
	}
	return i
}

// Save creates a new instance or updates a changed one through the
// connector. An unchanged persisted instance is returned as is. On success
// the current attributes become the stored state.
//
// Activity hook failures are returned after the write succeeded.
func (i *Instance) Save(ctx context.Context) (*Instance, error) {
	m := i.model
	start := time.Now()

	var (
		op      string
		verb    activity.Verb
		changes map[string]Change
		saved   *Instance
		err     error
	)
	switch {
	case i.IsNew():
		op, verb = "create", activity.VerbCreated
		saved, err = m.connector.Create(ctx, i)
	case i.IsChanged():
		op, verb = "update", activity.VerbUpdated
		changes = i.Changes()
		saved, err = m.connector.Update(ctx, i)
	default:
		return i, nil
	}
	if err != nil {
		return i, m.observe(op, start, 0, err)
	}
	if saved != nil && saved.id != nil {
		i.id = saved.id
	}
	i.persistent = cloneRecord(i.attributes)
	if i.persistent == nil {
		i.persistent = Record{}
	}
	m.observe(op, start, 1, nil)
	return i, i.emit(ctx, verb, changes)
}

// Delete removes the stored record. ErrNotFound is returned for an instance
// that was never stored.
func (i *Instance) Delete(ctx context.Context) (*Instance, error) {
	m := i.model
	start := time.Now()
	if !i.IsPersistent() {
		return i, m.observe("delete", start, 0, ErrNotFound)
	}
	if _, err := m.connector.Delete(ctx, i); err != nil {
		return i, m.observe("delete", start, 0, err)
	}
	m.observe("delete", start, 1, nil)
	return i, i.emit(ctx, activity.VerbDeleted, nil)
}

// Reload replaces attributes and stored state with the record currently in
// storage, discarding unsaved changes. A new instance returns (nil, nil).
func (i *Instance) Reload(ctx context.Context) (*Instance, error) {
	if !i.IsPersistent() {
		return nil, nil
	}
	fresh, err := i.model.Unfiltered().Find(ctx, i.id)
	if err != nil {
		return nil, err
	}
	i.attributes = fresh.attributes
	i.persistent = fresh.persistent
	return i, nil
}

// IsValid runs every validator concurrently and reports whether all of them
// accepted the instance. Without validators it is true.
func (i *Instance) IsValid(ctx context.Context) (bool, error) {
	validators := i.model.validators
	if len(validators) == 0 {
		return true, nil
	}
	results := make([]bool, len(validators))
	group, groupCtx := errgroup.WithContext(ctx)
	for idx, validator := range validators {
		if validator == nil {
			results[idx] = true
			continue
		}
		group.Go(func() error {
			ok, err := validator(groupCtx, i)
			results[idx] = ok
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return false, err
	}
	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Validate is IsValid returning ErrValidation on rejection.
func (i *Instance) Validate(ctx context.Context) error {
	ok, err := i.IsValid(ctx)
	if err != nil {
		return wrapOperationError("validate", i.model.scope.TableName, err)
	}
	if !ok {
		return wrapOperationError("validate", i.model.scope.TableName, ErrValidation)
	}
	return nil
}

// Decode converts the identifier and attributes of instance into T using its
// json struct tags.
func Decode[T any](instance *Instance) (T, error) {
	var zero T
	if instance == nil {
		return zero, invalidArgument("decode: nil instance")
	}
	ctx := hydrate.Context{Table: instance.model.scope.TableName}
	if instance.id != nil {
		ctx.ID = fmt.Sprint(instance.id)
	}
	return hydrate.NewDecoder[T]().Decode(ctx, instance.Record())
}

func (i *Instance) emit(ctx context.Context, verb activity.Verb, changes map[string]Change) error {
	emitter := i.model.emitter
	if !emitter.Enabled() {
		return nil
	}
	table := i.model.scope.TableName
	var event activity.Event
	switch verb {
	case activity.VerbCreated:
		event = activity.RecordCreated(table, i.id, cloneRecord(i.attributes))
	case activity.VerbUpdated:
		diff := make(map[string]activity.Change, len(changes))
		for key, change := range changes {
			diff[key] = activity.Change{From: change.From, To: change.To}
		}
		event = activity.RecordUpdated(table, i.id, cloneRecord(i.attributes), diff)
	default:
		event = activity.RecordDeleted(table, i.id)
	}
	return emitter.Emit(ctx, event)
}

func cloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	return Record(layering.Clone(map[string]any(r)).(map[string]any))
}

func sameValue(a, b any) bool {
	return Equal(a, b) || reflect.DeepEqual(a, b)
}
