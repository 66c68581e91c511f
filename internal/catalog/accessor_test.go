package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewWithData(map[string]any{
		"products": map[string]any{
			"TSR-23SD":  map[string]any{"sku": "TSR-23SD", "name": "Refrigerador", "price": float64(1000)},
			"TSR-49SD":  map[string]any{"sku": "TSR-49SD", "name": "Refrigerador doble", "price": float64(1500)},
			"M3R24-1":   map[string]any{"sku": "M3R24-1", "name": "Meson", "price": float64(800)},
			"BROKEN":    map[string]any{"sku": "BROKEN", "price": float64(-1)},
			"PRT-FAN-1": map[string]any{"sku": "PRT-FAN-1", "name": "Ventilador", "price": float64(120), "category": "Refacciones"},
		},
	})
	require.NoError(t, err)
	return store
}

func TestGet(t *testing.T) {
	acc := NewAccessor(seededStore(t))
	ctx := context.Background()

	product, err := acc.Get(ctx, "TSR-23SD")
	require.NoError(t, err)
	assert.Equal(t, "TSR-23SD", product.Key)
	assert.Equal(t, "1000", product.Price.String())

	_, err = acc.Get(ctx, "MISSING")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = acc.Get(ctx, "BROKEN")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = acc.Get(ctx, "bad/key")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListByPrefixIsRestartable(t *testing.T) {
	acc := NewAccessor(seededStore(t))
	seq := acc.ListByPrefix(context.Background(), "TSR")

	for range 2 {
		var keys []string
		for product, err := range seq {
			require.NoError(t, err)
			keys = append(keys, product.Key)
		}
		assert.Equal(t, []string{"TSR-23SD", "TSR-49SD"}, keys)
	}
}

func TestListByPrefixWithNumericSKUs(t *testing.T) {
	products := map[string]any{}
	for _, sku := range []string{"100", "200", "99", "2", "10A", "B10"} {
		products[sku] = map[string]any{"sku": sku, "name": "Unidad " + sku, "price": float64(10)}
	}
	store, err := memory.NewWithData(map[string]any{"products": products})
	require.NoError(t, err)
	acc := NewAccessor(store)

	collect := func(prefix string) []string {
		var keys []string
		for product, err := range acc.ListByPrefix(context.Background(), prefix) {
			require.NoError(t, err)
			keys = append(keys, product.Key)
		}
		return keys
	}

	assert.Equal(t, []string{"100", "10A"}, collect("10"))
	assert.Equal(t, []string{"B10"}, collect("B"))
	assert.Equal(t, []string{"2", "200"}, collect("2"))
	assert.Len(t, collect(""), 6)
}

func TestListByPrefixStopsEarly(t *testing.T) {
	acc := NewAccessor(seededStore(t))
	count := 0
	for range acc.ListByPrefix(context.Background(), "") {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSnapshot(t *testing.T) {
	acc := NewAccessor(seededStore(t))
	ctx := context.Background()

	subset, err := acc.Snapshot(ctx, "TSR-23SD", "M3R24-1", "MISSING")
	require.NoError(t, err)
	assert.Len(t, subset, 2)
	assert.Contains(t, subset, "M3R24-1")

	all, err := acc.Snapshot(ctx)
	require.Error(t, err)
	assert.Len(t, all, 4)
	assert.True(t, all["PRT-FAN-1"].IsSparePart())
}
