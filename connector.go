package records

import "context"

// Connector is the contract a storage backend satisfies. Every method blocks
// until the backend settles and must honour ctx cancellation where it can.
//
// Read methods return plain records; the Model hydrates them into Instances.
// Create, Update and Delete receive the Instance being persisted and return
// the persisted state built with Model.Hydrate.
type Connector interface {
	// Query returns the records matching scope, ordered, skipped and limited.
	Query(ctx context.Context, scope Scope) ([]Record, error)
	// Count returns the number of records matching the scope filter,
	// ignoring skip and limit.
	Count(ctx context.Context, scope Scope) (int, error)
	// Select returns, for every record Query would return, the values of keys.
	Select(ctx context.Context, scope Scope, keys ...string) ([][]any, error)
	// UpdateAll merges attrs into every record matching the scope filter.
	UpdateAll(ctx context.Context, scope Scope, attrs Record) (int, error)
	// DeleteAll removes every record matching the scope filter.
	DeleteAll(ctx context.Context, scope Scope) (int, error)
	// Create stores a new record and assigns its identifier.
	Create(ctx context.Context, instance *Instance) (*Instance, error)
	// Update replaces the stored record with the instance attributes.
	Update(ctx context.Context, instance *Instance) (*Instance, error)
	// Delete removes the stored record of the instance.
	Delete(ctx context.Context, instance *Instance) (*Instance, error)
	// Execute runs a backend specific query.
	Execute(ctx context.Context, query string, bindings ...any) ([]Record, error)
}
