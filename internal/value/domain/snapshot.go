package domain

// SnapshotEntry is the projected form of one repeating sub-record (a photo
// descriptor). Field names follow the provider wire format so stored
// snapshots stay queryable against provider documentation.
type SnapshotEntry struct {
	Reference    string   `json:"photo_reference"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Attributions []string `json:"html_attributions"`
}

// BuildSnapshot projects a raw sub-record list into snapshot entries:
// entries without a reference id are dropped, duplicates by reference id
// keep the first occurrence, and the result is capped at max entries.
func BuildSnapshot(raw []any, max int) []SnapshotEntry {
	if max <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	entries := make([]SnapshotEntry, 0, min(len(raw), max))
	for _, item := range raw {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ref, _ := record["photo_reference"].(string)
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}

		entries = append(entries, SnapshotEntry{
			Reference:    ref,
			Width:        intField(record, "width"),
			Height:       intField(record, "height"),
			Attributions: stringSliceField(record, "html_attributions"),
		})
		if len(entries) == max {
			break
		}
	}
	return entries
}

func intField(record map[string]any, key string) int {
	if f, ok := record[key].(float64); ok {
		return int(f)
	}
	if i, ok := record[key].(int); ok {
		return i
	}
	return 0
}

func stringSliceField(record map[string]any, key string) []string {
	raw, ok := record[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
