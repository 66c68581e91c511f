package treestore

import (
	"fmt"
	"strings"

	"github.com/turboairmx/quotesync/pkg/errors"
)

const forbiddenKeyChars = ".#$[]"

// Split normalizes a slash-separated path into its segments. The root path
// ("" or "/") yields no segments.
func Split(path string) ([]string, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, "/")
	for _, part := range parts {
		if err := ValidateKey(part); err != nil {
			return nil, errors.Wrap(errors.CodeValidation, err, fmt.Sprintf("invalid path %q", path))
		}
	}
	return parts, nil
}

// Normalize returns the canonical form of path without leading or trailing slashes.
func Normalize(path string) (string, error) {
	parts, err := Split(path)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, "/"), nil
}

// Join builds a path from segments, skipping empty ones.
func Join(segments ...string) string {
	clean := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			clean = append(clean, s)
		}
	}
	return strings.Join(clean, "/")
}

// ValidateKey rejects empty keys and keys the store cannot address. A key is
// a single segment, so it may not contain a slash.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New(errors.CodeValidation, "empty path segment")
	}
	if strings.ContainsAny(key, forbiddenKeyChars+"/") {
		return errors.Newf(errors.CodeValidation, "segment %q contains one of %q", key, forbiddenKeyChars+"/")
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return errors.Newf(errors.CodeValidation, "segment %q contains a control character", key)
		}
	}
	return nil
}

// Related reports whether one normalized path equals or is a segment-prefix of the other.
// "products/A" and "products/A/price" are related; "products/A" and "products/AB" are not.
func Related(a, b string) bool {
	if a == b || a == "" || b == "" {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasPrefix(b, a) && b[len(a)] == '/'
}

// ValidateUpdates normalizes every path in updates, rejects nil values and
// overlapping paths, and returns the normalized map.
func ValidateUpdates(updates map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(updates))
	for path, value := range updates {
		norm, err := Normalize(path)
		if err != nil {
			return nil, err
		}
		if norm == "" {
			return nil, errors.New(errors.CodeValidation, "root path cannot be updated")
		}
		if value == nil {
			return nil, errors.Newf(errors.CodeValidation, "nil value at %q; use Delete", norm)
		}
		if _, dup := out[norm]; dup {
			return nil, errors.Newf(errors.CodePathCollision, "path %q appears twice", norm)
		}
		out[norm] = value
	}
	for path := range out {
		if ancestor, ok := FindAncestor(path, func(p string) bool { _, ok := out[p]; return ok }); ok {
			return nil, errors.Newf(errors.CodePathCollision, "paths %q and %q overlap", ancestor, path)
		}
	}
	return out, nil
}

// FindAncestor walks the proper ancestors of a normalized path, nearest first,
// and returns the first one for which present reports true.
func FindAncestor(path string, present func(string) bool) (string, bool) {
	for i := len(path) - 1; i > 0; i-- {
		if path[i] != '/' {
			continue
		}
		if candidate := path[:i]; present(candidate) {
			return candidate, true
		}
	}
	return "", false
}
