// Package records declares a record shape once and derives composable,
// immutable query scopes over it, executed by a pluggable Connector.
//
// A Model is built from a Config. Chain methods (FilterBy, OrFilterBy,
// LimitBy, SkipBy, OrderBy, ...) never mutate their receiver; they return a new
// Model carrying a new Scope. Terminal methods (All, First, Count, Pluck,
// UpdateAll, DeleteAll, InBatchesOf, ...) hand the Scope to the Connector and
// hydrate the returned rows into Instances.
//
// Data flow:
//
//	Config -> New -> *Model -> chain -> *Model -> terminal(ctx) -> Connector -> []*Instance
//
// Filters form a tree (Property, And, Or, Not, In, Between, Gt, ...). A nil
// Filter matches every record. ParseFilter and FilterToMap convert the tree
// to and from plain key/value data so it can travel as JSON or YAML.
//
// Instances track their attributes against the last persisted snapshot;
// Save creates or updates through the connector, Delete removes, Reload
// discards unsaved changes.
//
// The in-memory reference connector lives in pkg/memory.
package records
