// Package memory implements records.Connector over an in-process map of
// tables.
//
// The Storage map is owned by the caller: it may be seeded or inspected
// between calls, and every mutation is written back into it, so all models
// sharing one Storage observe each other's writes immediately. The connector
// serializes its own read-modify-write steps; callers touching Storage
// directly while operations run must synchronize externally.
package memory
