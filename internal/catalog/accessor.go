// Package catalog reads products from the tree store. It never writes.
package catalog

import (
	"context"
	"iter"
	"strings"

	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"go.uber.org/multierr"
)

// Root is the node holding every product keyed by SKU.
const Root = "products"

// prefixEnd sorts after every character a SKU can contain.
const prefixEnd = "\uf8ff"

type Accessor struct {
	store treestore.Store
}

func NewAccessor(store treestore.Store) *Accessor {
	return &Accessor{store: store}
}

// Get returns the product stored under sku.
func (a *Accessor) Get(ctx context.Context, sku string) (models.Product, error) {
	if err := treestore.ValidateKey(sku); err != nil {
		return models.Product{}, err
	}
	raw, ok, err := a.store.Read(ctx, treestore.Join(Root, sku))
	if err != nil {
		return models.Product{}, err
	}
	if !ok {
		return models.Product{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", sku)
	}
	return decode(sku, raw)
}

// ListByPrefix lazily yields products whose key starts with prefix, in key
// order. Each range over the returned sequence queries the store again. A
// malformed record yields an error and iteration continues.
//
// The store range only narrows the read: integer-like keys order ahead of
// strings, so numeric SKUs can fall inside the bounds without matching.
func (a *Accessor) ListByPrefix(ctx context.Context, prefix string) iter.Seq2[models.Product, error] {
	return func(yield func(models.Product, error) bool) {
		q := treestore.Query{OrderByKey: true}
		if prefix != "" {
			q.StartAt = prefix
			q.EndAt = prefix + prefixEnd
		}
		children, err := a.store.Query(ctx, Root, q)
		if err != nil {
			yield(models.Product{}, err)
			return
		}
		for _, child := range children {
			if err := ctx.Err(); err != nil {
				yield(models.Product{}, err)
				return
			}
			if !strings.HasPrefix(child.Key, prefix) {
				continue
			}
			product, err := decode(child.Key, child.Value)
			if !yield(product, err) {
				return
			}
		}
	}
}

// Snapshot loads the named products, or the whole catalog when skus is
// empty, keyed by node key. Missing SKUs are absent from the map. Malformed
// records are reported together after the rest have loaded.
func (a *Accessor) Snapshot(ctx context.Context, skus ...string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(skus))
	var errs error
	if len(skus) == 0 {
		for product, err := range a.ListByPrefix(ctx, "") {
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				errs = multierr.Append(errs, err)
				continue
			}
			out[product.Key] = product
		}
		return out, errs
	}

	for _, sku := range skus {
		if _, seen := out[sku]; seen {
			continue
		}
		product, err := a.Get(ctx, sku)
		if err != nil {
			if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
				continue
			}
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				return nil, err
			}
			errs = multierr.Append(errs, err)
			continue
		}
		out[sku] = product
	}
	return out, errs
}

func decode(key string, raw any) (models.Product, error) {
	product, err := models.ProductFromValue(raw)
	if err != nil {
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "product "+key+" is malformed")
	}
	product.Key = key
	return product, nil
}
