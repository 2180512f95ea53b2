// Package worklist loads the externally-supplied set of place ids to
// process on a run.
package worklist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one work item. The file format accepts either a bare place id
// string or an object with optional preferred name and category type codes.
type Entry struct {
	PlaceID       string   `json:"placeId"`
	PreferredName string   `json:"preferredName,omitempty"`
	Types         []string `json:"types,omitempty"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		e.PlaceID = id
		return nil
	}

	type alias Entry
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = Entry(decoded)
	return nil
}

// Load reads the worklist file. Entries without a place id are dropped.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read worklist %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse worklist %s: %w", path, err)
	}

	out := entries[:0]
	for _, entry := range entries {
		entry.PlaceID = strings.TrimSpace(entry.PlaceID)
		if entry.PlaceID == "" {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}
