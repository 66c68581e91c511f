package treestore

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// ApplyQuery orders, filters and limits the children of node. Backends that
// can only fetch whole nodes share this implementation.
func ApplyQuery(node any, q Query) ([]Child, error) {
	children, ok := node.(map[string]any)
	if !ok {
		return nil, nil
	}
	start, err := normalizeBound(q.StartAt)
	if err != nil {
		return nil, err
	}
	end, err := normalizeBound(q.EndAt)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		child Child
		rank  any
	}
	byChild := strings.Trim(q.OrderByChild, "/")
	items := make([]ranked, 0, len(children))
	for key, value := range children {
		var rank any = key
		if byChild != "" {
			rank = lookup(value, byChild)
		}
		if start != nil && compareRank(rank, start, byChild == "") < 0 {
			continue
		}
		if end != nil && compareRank(rank, end, byChild == "") > 0 {
			continue
		}
		items = append(items, ranked{child: Child{Key: key, Value: Clone(value)}, rank: rank})
	}

	slices.SortFunc(items, func(a, b ranked) int {
		if byChild != "" {
			if c := CompareValues(a.rank, b.rank); c != 0 {
				return c
			}
		}
		return CompareKeys(a.child.Key, b.child.Key)
	})

	if q.LimitToLast > 0 && len(items) > q.LimitToLast {
		items = items[len(items)-q.LimitToLast:]
	}
	out := make([]Child, len(items))
	for i, item := range items {
		out[i] = item.child
	}
	return out, nil
}

func normalizeBound(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return NormalizeValue(v)
}

func compareRank(rank, bound any, byKey bool) int {
	if byKey {
		key, _ := rank.(string)
		b, ok := bound.(string)
		if !ok {
			b = strconv.FormatFloat(toFloat(bound), 'f', -1, 64)
		}
		return CompareKeys(key, b)
	}
	return CompareValues(rank, bound)
}

func lookup(value any, path string) any {
	current := value
	for _, segment := range strings.Split(path, "/") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[segment]
	}
	return current
}

// CompareValues orders values as the store does: null, false, true, numbers,
// strings, then objects.
func CompareValues(a, b any) int {
	ta, tb := typeRank(a), typeRank(b)
	if ta != tb {
		return cmp.Compare(ta, tb)
	}
	switch ta {
	case 3:
		return cmp.Compare(toFloat(a), toFloat(b))
	case 4:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}

// CompareKeys sorts integer-like keys numerically ahead of other keys.
func CompareKeys(a, b string) int {
	ia, errA := strconv.ParseInt(a, 10, 64)
	ib, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(ia, ib)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func typeRank(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 2
		}
		return 1
	case float64, float32, int, int32, int64:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
