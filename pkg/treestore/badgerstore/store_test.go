package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpdateAndReadNested(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Update(ctx, map[string]any{
		"products/TSR-23SD": map[string]any{
			"name":  "Refrigerador",
			"price": 4500,
			"warehouseStock": map[string]any{
				"CDMX": map[string]any{"available": 4, "reserved": 1},
			},
		},
	}))

	v, ok, err := s.Read(ctx, "products/TSR-23SD/warehouseStock/CDMX/available")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(4), v)

	node, ok, err := s.Read(ctx, "products")
	require.NoError(t, err)
	require.True(t, ok)
	product := node.(map[string]any)["TSR-23SD"].(map[string]any)
	assert.Equal(t, "Refrigerador", product["name"])
}

func TestUpdateReplacesNodeAndAncestorLeaf(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Update(ctx, map[string]any{"products/A": map[string]any{"name": "a", "price": 1}}))
	require.NoError(t, s.Update(ctx, map[string]any{"products/A": map[string]any{"name": "b"}}))
	v, _, err := s.Read(ctx, "products/A")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "b"}, v)

	require.NoError(t, s.Update(ctx, map[string]any{"flags": true}))
	require.NoError(t, s.Update(ctx, map[string]any{"flags/beta": true}))
	v, _, err = s.Read(ctx, "flags")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"beta": true}, v)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Update(ctx, map[string]any{"products/A": map[string]any{"name": "a"}, "products/AB": map[string]any{"name": "ab"}}))
	require.NoError(t, s.Update(ctx, map[string]any{"products/A": treestore.Delete}))

	_, ok, err := s.Read(ctx, "products/A")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Read(ctx, "products/AB")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOverlapRejectedBeforeWrite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	err := s.Update(ctx, map[string]any{"products/A": map[string]any{"price": 1}, "products/A/price": 2})
	require.Error(t, err)
	assert.Equal(t, errors.CodePathCollision, errors.CodeOf(err))
	_, ok, _ := s.Read(ctx, "products")
	assert.False(t, ok)
}

func TestPushAndQueryLimitToLast(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i := 1; i <= 3; i++ {
		_, err := s.Push(ctx, "audit_logs", map[string]any{"seq": i})
		require.NoError(t, err)
	}
	children, err := s.Query(ctx, "audit_logs", treestore.Query{OrderByChild: "seq", LimitToLast: 1})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, float64(3), children[0].Value.(map[string]any)["seq"])
}
