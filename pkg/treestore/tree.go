package treestore

// SetAt writes value into root at the given segments, creating intermediate
// nodes and replacing leaves that sit in the way. Writing Delete removes the
// node and prunes parents left empty. The returned root may be nil when the
// whole tree became empty.
func SetAt(root map[string]any, segments []string, value any) map[string]any {
	if len(segments) == 0 {
		if IsDelete(value) {
			return nil
		}
		if node, ok := value.(map[string]any); ok {
			return node
		}
		return nil
	}
	if root == nil {
		if IsDelete(value) {
			return nil
		}
		root = map[string]any{}
	}
	key := segments[0]
	if len(segments) == 1 {
		if IsDelete(value) || isEmptyNode(value) {
			delete(root, key)
		} else {
			root[key] = value
		}
	} else {
		child, _ := root[key].(map[string]any)
		child = SetAt(child, segments[1:], value)
		if len(child) == 0 {
			delete(root, key)
		} else {
			root[key] = child
		}
	}
	if len(root) == 0 {
		return nil
	}
	return root
}

// GetAt returns the node at the given segments.
func GetAt(root map[string]any, segments []string) (any, bool) {
	var current any = root
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	if node, ok := current.(map[string]any); ok && len(node) == 0 {
		return nil, false
	}
	return current, true
}

func isEmptyNode(v any) bool {
	node, ok := v.(map[string]any)
	return ok && len(node) == 0
}
