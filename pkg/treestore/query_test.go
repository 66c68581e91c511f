package treestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyQueryOrdersByChildThenKey(t *testing.T) {
	node := map[string]any{
		"c": map[string]any{"total": 30.0},
		"a": map[string]any{"total": 10.0},
		"b": map[string]any{"total": 10.0},
		"d": map[string]any{"name": "no total"},
	}
	children, err := ApplyQuery(node, Query{OrderByChild: "total"})
	require.NoError(t, err)
	keys := make([]string, len(children))
	for i, c := range children {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, keys)
}

func TestApplyQueryByKeyWithBounds(t *testing.T) {
	node := map[string]any{"10": 1.0, "2": 1.0, "abc": 1.0, "b": 1.0}
	children, err := ApplyQuery(node, Query{OrderByKey: true})
	require.NoError(t, err)
	require.Len(t, children, 4)
	assert.Equal(t, "2", children[0].Key)
	assert.Equal(t, "10", children[1].Key)

	bounded, err := ApplyQuery(node, Query{OrderByKey: true, StartAt: "a", EndAt: "az"})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "abc", bounded[0].Key)
}

func TestApplyQueryLeafNode(t *testing.T) {
	children, err := ApplyQuery("leaf", Query{})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestCompareValuesTypeOrder(t *testing.T) {
	ordered := []any{nil, false, true, 1.0, 2.0, "a", map[string]any{"x": 1.0}}
	for i := 1; i < len(ordered); i++ {
		assert.Negative(t, CompareValues(ordered[i-1], ordered[i]), "index %d", i)
	}
}

func TestNormalizeValueDropsNulls(t *testing.T) {
	v, err := NormalizeValue(map[string]any{"a": nil, "b": map[string]any{}, "c": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"c": 1.0}, v)
}
