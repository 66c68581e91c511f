// Package treestore defines the boundary to the hierarchical, path-addressed
// document store that holds the catalog, per-rep sales data and user profiles.
//
// Values crossing the boundary are JSON-shaped: map[string]any for nodes,
// string, float64, bool and []any for leaves. Writing nil is not allowed;
// use Delete to remove a node.
package treestore

import (
	"context"
)

type deleteMarker struct{}

func (deleteMarker) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Delete removes the node at a path when used as a value in Update.
var Delete any = deleteMarker{}

// IsDelete reports whether v is the Delete marker.
func IsDelete(v any) bool {
	_, ok := v.(deleteMarker)
	return ok
}

// Store is implemented by every backend. Update applies all paths atomically
// or none of them; each path is a full overwrite of the node it names.
type Store interface {
	Read(ctx context.Context, path string) (any, bool, error)
	Update(ctx context.Context, updates map[string]any) error
	Push(ctx context.Context, path string, value any) (string, error)
	Query(ctx context.Context, path string, q Query) ([]Child, error)
}

// Child is one ordered result of a Query.
type Child struct {
	Key   string
	Value any
}

// Query selects and orders the direct children of a node. With neither
// OrderByChild nor OrderByKey set, children are ordered by key.
type Query struct {
	OrderByChild string
	OrderByKey   bool
	StartAt      any
	EndAt        any
	LimitToLast  int
}
