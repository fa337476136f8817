/*
Package cqlmapper – driver client interface.

The mapper consumes the underlying driver through this narrow surface:
metadata lookup plus statement / batch execution. Connection management,
retries, consistency and paging belong to the driver.
*/
package cqlmapper

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Client metadata lookups when the requested
// table or view does not exist.
var ErrNotFound = errors.New("metadata not found")

// ExecOptions carries per-statement hints derived from the synthesized
// plan. Drivers may use Idempotent to enable speculative retries and
// Counter to select a counter batch.
type ExecOptions struct {
	Idempotent bool
	Counter    bool
}

// BatchQuery is one statement of an atomic batch.
type BatchQuery struct {
	Query  string
	Values []any
}

// ResultSet is the raw row set returned by the driver. Columns are in
// server order; each row holds one value per column.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Client is the interface satisfied by the real driver session and by any
// test doubles.
type Client interface {
	// Connect ensures schema metadata is available before lookups.
	Connect(ctx context.Context) error

	// Table returns metadata for keyspace.name, or ErrNotFound.
	Table(ctx context.Context, keyspace, name string) (*TableMetadata, error)

	// View returns metadata for the materialized view keyspace.name,
	// or ErrNotFound.
	View(ctx context.Context, keyspace, name string) (*TableMetadata, error)

	// Execute runs a single parameterized statement.
	Execute(ctx context.Context, query string, values []any, opts ExecOptions) (*ResultSet, error)

	// Batch runs the given statements as one atomic batch.
	Batch(ctx context.Context, queries []BatchQuery, opts ExecOptions) (*ResultSet, error)
}
