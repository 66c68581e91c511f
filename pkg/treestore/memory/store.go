// Package memory is an in-process treestore backend used by tests, dry runs
// and local development.
package memory

import (
	"context"
	"sync"

	"github.com/turboairmx/quotesync/pkg/treestore"
)

type Store struct {
	mu   sync.RWMutex
	root map[string]any
}

var _ treestore.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewWithData seeds the store with a deep copy of root.
func NewWithData(root map[string]any) (*Store, error) {
	normalized, err := treestore.NormalizeValue(root)
	if err != nil {
		return nil, err
	}
	node, _ := normalized.(map[string]any)
	return &Store{root: node}, nil
}

func (s *Store) Read(ctx context.Context, path string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	segments, err := treestore.Split(path)
	if err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := treestore.GetAt(s.root, segments)
	if !ok {
		return nil, false, nil
	}
	return treestore.Clone(value), true, nil
}

func (s *Store) Update(ctx context.Context, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	validated, err := treestore.ValidateUpdates(updates)
	if err != nil {
		return err
	}
	type write struct {
		segments []string
		value    any
	}
	writes := make([]write, 0, len(validated))
	for path, value := range validated {
		normalized, err := treestore.NormalizeValue(value)
		if err != nil {
			return err
		}
		if normalized == nil {
			normalized = treestore.Delete
		}
		segments, _ := treestore.Split(path)
		writes = append(writes, write{segments: segments, value: normalized})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		s.root = treestore.SetAt(s.root, w.segments, w.value)
	}
	return nil
}

func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	key := treestore.NewKey()
	if err := s.Update(ctx, map[string]any{treestore.Join(path, key): value}); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) Query(ctx context.Context, path string, q treestore.Query) ([]treestore.Child, error) {
	node, ok, err := s.Read(ctx, path)
	if err != nil || !ok {
		return nil, err
	}
	return treestore.ApplyQuery(node, q)
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.root == nil {
		return map[string]any{}
	}
	return treestore.Clone(s.root).(map[string]any)
}
