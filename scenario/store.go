// Package scenario stores named scenario registrations: a caller-resolved
// factory key plus a seed Path, so a previously-found interleaving can be
// replayed later without re-running the search that found it.
//
// This is deliberately narrow: it persists the recipe for reconstructing an
// Execution (factory key + seed path), never the state graph itself. The
// visited-state graph, frontier, and root set are runtime-only (see
// execution and visitor) and are never written here.
package scenario

import (
	"context"
	"errors"

	"github.com/race-explorer/racegraph/execution"
)

// ErrNotFound is returned when a requested scenario name does not exist.
var ErrNotFound = errors.New("scenario: not found")

// Record is one named scenario.
type Record struct {
	// Name uniquely identifies this scenario.
	Name string
	// FactoryKey is an application-defined string the caller resolves back
	// to an execution.Factory (e.g. a registry lookup key); the Store never
	// interprets it.
	FactoryKey string
	// SeedPath is the process.ID sequence to replay via
	// Execution.FromPath once the named factory's processes are added.
	SeedPath execution.Path
}

// Store persists and retrieves named Records.
type Store interface {
	// Save creates or overwrites the Record named rec.Name.
	Save(ctx context.Context, rec Record) error

	// Load retrieves the Record named name, or ErrNotFound.
	Load(ctx context.Context, name string) (Record, error)

	// List returns all known scenario names, in no particular order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the Record named name. It is not an error to delete a
	// name that does not exist.
	Delete(ctx context.Context, name string) error
}
