// Package badgerstore persists the tree in an embedded Badger database. Each
// leaf is stored under its full path so a multi-path update maps onto a
// single Badger transaction.
package badgerstore

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const keyPrefix = "t/"

type Store struct {
	db *badger.DB
}

var _ treestore.Store = (*Store)(nil)

// Options controls where the database lives.
type Options struct {
	Dir      string
	InMemory bool
}

func Open(ctx context.Context, opts Options, logg *logger.Logger) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, fmt.Errorf("badger dir is required")
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}
	db, err := badger.Open(bopts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dir": opts.Dir, "in_memory": opts.InMemory}), "badger tree store opened")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Read(ctx context.Context, path string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	norm, err := treestore.Normalize(path)
	if err != nil {
		return nil, false, err
	}
	var (
		out   any
		found bool
	)
	err = s.db.View(func(txn *badger.Txn) error {
		if norm != "" {
			item, err := txn.Get(leafKey(norm))
			switch {
			case err == nil:
				found = true
				return item.Value(func(val []byte) error {
					return json.Unmarshal(val, &out)
				})
			case !stdErrors.Is(err, badger.ErrKeyNotFound):
				return err
			}
		}
		node, err := readSubtree(txn, norm)
		if err != nil {
			return err
		}
		if node != nil {
			out, found = node, true
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.CodeDependency, err, "badger read")
	}
	return out, found, nil
}

func (s *Store) Update(ctx context.Context, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	validated, err := treestore.ValidateUpdates(updates)
	if err != nil {
		return err
	}
	normalized := make(map[string]any, len(validated))
	for path, value := range validated {
		v, err := treestore.NormalizeValue(value)
		if err != nil {
			return err
		}
		if v == nil {
			v = treestore.Delete
		}
		normalized[path] = v
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for path, value := range normalized {
			if err := clearPath(txn, path); err != nil {
				return err
			}
			if treestore.IsDelete(value) {
				continue
			}
			if err := writeFlattened(txn, path, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "badger update")
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

func leafKey(path string) []byte {
	return []byte(keyPrefix + path)
}

func subtreePrefix(path string) []byte {
	if path == "" {
		return []byte(keyPrefix)
	}
	return []byte(keyPrefix + path + "/")
}

func readSubtree(txn *badger.Txn, path string) (map[string]any, error) {
	prefix := subtreePrefix(path)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var root map[string]any
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		rel := strings.TrimPrefix(string(item.Key()), string(prefix))
		var leaf any
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &leaf)
		}); err != nil {
			return nil, err
		}
		root = treestore.SetAt(root, strings.Split(rel, "/"), leaf)
	}
	return root, nil
}

// clearPath removes the leaf at path, every descendant leaf and any ancestor
// stored as a leaf, so the next write fully replaces the node.
func clearPath(txn *badger.Txn, path string) error {
	if err := txn.Delete(leafKey(path)); err != nil {
		return err
	}
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' {
			if err := txn.Delete(leafKey(path[:i])); err != nil {
				return err
			}
		}
	}

	prefix := subtreePrefix(path)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	var stale [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		stale = append(stale, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, key := range stale {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func writeFlattened(txn *badger.Txn, path string, value any) error {
	if node, ok := value.(map[string]any); ok {
		for key, child := range node {
			if err := writeFlattened(txn, path+"/"+key, child); err != nil {
				return err
			}
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(leafKey(path), raw)
}
