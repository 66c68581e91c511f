// Package batch collects multi-path writes and commits them to the tree store
// in ordered, size-bounded chunks.
package batch

import (
	"fmt"

	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"go.uber.org/multierr"
)

// Entry is one path write. A Value of treestore.Delete removes the node.
type Entry struct {
	Path  string
	Value any
}

type group []Entry

// Update is an ordered set of path writes. Entries added together through
// Atomic or Rename form a group that always lands in the same store call.
// Every write is a full overwrite, so committing the same Update twice
// converges to the same state.
type Update struct {
	source string
	groups []group
	where  map[string]int
	err    error
}

// NewUpdate starts an empty update. source labels metrics and logs.
func NewUpdate(source string) *Update {
	return &Update{source: source, where: map[string]int{}}
}

func (u *Update) Source() string {
	return u.source
}

// Set writes value at path. Setting a path already in the update replaces
// the earlier value; see Atomic for how groups are kept together.
func (u *Update) Set(path string, value any) *Update {
	return u.Atomic(Entry{Path: path, Value: value})
}

// Delete removes the node at path.
func (u *Update) Delete(path string) *Update {
	return u.Set(path, treestore.Delete)
}

// Atomic adds entries that must be committed in one store call. When an
// entry repeats a path from an earlier group, that whole group joins this
// one, so every group either update promised stays in a single chunk. The
// later value wins.
func (u *Update) Atomic(entries ...Entry) *Update {
	var (
		g       group
		pending = map[string]int{}
	)
	add := func(e Entry) {
		if i, ok := pending[e.Path]; ok {
			g[i].Value = e.Value
			return
		}
		pending[e.Path] = len(g)
		g = append(g, e)
	}
	for _, e := range entries {
		path, err := treestore.Normalize(e.Path)
		if err != nil {
			u.err = multierr.Append(u.err, err)
			continue
		}
		if path == "" {
			u.err = multierr.Append(u.err, pkgerrors.New(pkgerrors.CodeValidation, "root path cannot be written"))
			continue
		}
		if e.Value == nil {
			u.err = multierr.Append(u.err, pkgerrors.Newf(pkgerrors.CodeValidation, "nil value at %q; use Delete", path))
			continue
		}
		if gi, ok := u.where[path]; ok {
			earlier := u.groups[gi]
			u.groups[gi] = nil
			for _, prev := range earlier {
				add(prev)
			}
		}
		add(Entry{Path: path, Value: e.Value})
	}
	if len(g) > 0 {
		gi := len(u.groups)
		u.groups = append(u.groups, g)
		for _, e := range g {
			u.where[e.Path] = gi
		}
	}
	return u
}

// Rename moves a record from base/oldKey to base/newKey as a single group:
// the old node is deleted and the full record written under the new key.
func (u *Update) Rename(base, oldKey, newKey string, record any) *Update {
	for _, key := range []string{oldKey, newKey} {
		if err := treestore.ValidateKey(key); err != nil {
			u.err = multierr.Append(u.err, err)
			return u
		}
	}
	if oldKey == newKey {
		return u.Set(treestore.Join(base, newKey), record)
	}
	return u.Atomic(
		Entry{Path: treestore.Join(base, oldKey), Value: treestore.Delete},
		Entry{Path: treestore.Join(base, newKey), Value: record},
	)
}

// Merge appends every group of other, keeping its grouping.
func (u *Update) Merge(other *Update) *Update {
	if other == nil {
		return u
	}
	u.err = multierr.Append(u.err, other.err)
	for _, g := range other.groups {
		u.Atomic(g...)
	}
	return u
}

// Len is the number of distinct paths.
func (u *Update) Len() int {
	return len(u.where)
}

// Entries returns every write in insertion order.
func (u *Update) Entries() []Entry {
	out := make([]Entry, 0, u.Len())
	for _, g := range u.groups {
		out = append(out, g...)
	}
	return out
}

// Validate reports recording errors and overlapping paths. No store is
// touched before an update validates.
func (u *Update) Validate() error {
	if u.err != nil {
		return u.err
	}
	for _, e := range u.Entries() {
		ancestor, ok := treestore.FindAncestor(e.Path, func(p string) bool {
			_, present := u.where[p]
			return present
		})
		if ok {
			return &PathCollisionError{Ancestor: ancestor, Path: e.Path}
		}
	}
	return nil
}

// PathCollisionError rejects an update holding a path and one of its descendants.
type PathCollisionError struct {
	Ancestor string
	Path     string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("%s: paths %q and %q overlap", pkgerrors.CodePathCollision, e.Ancestor, e.Path)
}

func (e *PathCollisionError) Unwrap() error {
	return pkgerrors.Newf(pkgerrors.CodePathCollision, "paths %q and %q overlap", e.Ancestor, e.Path).
		WithDetails(map[string]string{"ancestor": e.Ancestor, "path": e.Path})
}

func (e *PathCollisionError) CollidingPaths() (string, string) {
	return e.Ancestor, e.Path
}
