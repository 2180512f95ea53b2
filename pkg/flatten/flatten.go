// Package flatten walks nested provider records into flat dot-path keys.
//
// Arrays are treated as opaque leaves: a record {"a": {"b": 1}, "c": [..]}
// flattens to the keys "a.b" and "c". Index expansion ("c[0]", "c[1]") is
// deliberately not supported because downstream schema keys on exact
// dot-paths and index-expanded keys churn the schema on every fetch.
package flatten

import "sort"

// Flatten returns the mapping from dot-path key to leaf value. Nil leaves,
// empty objects and empty arrays produce no entries.
func Flatten(record map[string]any) map[string]any {
	out := make(map[string]any)
	walk(record, "", out)
	return out
}

// Keys returns the sorted dot-path keys of a record.
func Keys(record map[string]any) []string {
	flat := Flatten(record)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func walk(value any, prefix string, out map[string]any) {
	obj, ok := value.(map[string]any)
	if !ok {
		if value != nil {
			out[prefix] = value
		}
		return
	}
	for key, child := range obj {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child == nil {
			continue
		}
		if nested, ok := child.(map[string]any); ok {
			walk(nested, full, out)
			continue
		}
		// An empty array carries no discoverable value.
		if arr, ok := child.([]any); ok && len(arr) == 0 {
			continue
		}
		out[full] = child
	}
}

// Resolve re-resolves a dot-path against a record. It returns nil when any
// path segment is missing or a non-object is traversed.
func Resolve(record map[string]any, keyPath string) any {
	var current any = record
	start := 0
	for i := 0; i <= len(keyPath); i++ {
		if i != len(keyPath) && keyPath[i] != '.' {
			continue
		}
		segment := keyPath[start:i]
		start = i + 1
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		child, ok := obj[segment]
		if !ok {
			return nil
		}
		current = child
	}
	return current
}
