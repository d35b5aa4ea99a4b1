// Package filter post-processes parsed record sequences. Stages are
// pure functions over slices; when several are requested they apply in
// the order: key membership, path match, unique, projection, adjacent
// dedup.
package filter

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/iotux/log-parser/internal/models"
)

// WithKey keeps only records that contain the given top-level key.
func WithKey(records []*models.Record, key string) []*models.Record {
	var kept []*models.Record
	for _, record := range records {
		if record.Has(key) {
			kept = append(kept, record)
		}
	}
	return kept
}

// MatchPath keeps records whose value at a gjson path equals want when
// rendered as a string. Nested fields use dot notation ("c.d").
func MatchPath(records []*models.Record, path, want string) []*models.Record {
	var kept []*models.Record
	for _, record := range records {
		result := gjson.Get(record.EncodeCompact(), path)
		if result.Exists() && result.String() == want {
			kept = append(kept, record)
		}
	}
	return kept
}

// Unique removes structurally equal duplicates, keeping the first
// occurrence. Equality covers values and key order.
func Unique(records []*models.Record) []*models.Record {
	seen := make(map[string]struct{}, len(records))
	var kept []*models.Record
	for _, record := range records {
		encoded := record.EncodeCompact()
		if _, dup := seen[encoded]; dup {
			continue
		}
		seen[encoded] = struct{}{}
		kept = append(kept, record)
	}
	return kept
}

// Project reduces each record to the given keys, in the given order.
// Keys absent from a record are simply omitted from its projection.
func Project(records []*models.Record, keys []string) []*models.Record {
	projected := make([]*models.Record, 0, len(records))
	for _, record := range records {
		out := models.NewRecord()
		for _, key := range keys {
			if value, ok := record.Get(key); ok {
				out.Set(key, value)
			}
		}
		projected = append(projected, out)
	}
	return projected
}

// DedupAdjacent drops a record when its composite key tuple equals the
// immediately preceding kept record's tuple. Non-consecutive duplicates
// are retained on purpose: the stage answers "did this just repeat",
// not "have I ever seen this".
func DedupAdjacent(records []*models.Record, keys []string) []*models.Record {
	if len(keys) == 0 {
		return records
	}
	var (
		kept []*models.Record
		prev string
		have bool
	)
	for _, record := range records {
		tuple := compositeKey(record, keys)
		if have && tuple == prev {
			continue
		}
		kept = append(kept, record)
		prev = tuple
		have = true
	}
	return kept
}

func compositeKey(record *models.Record, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value, ok := record.Get(key)
		if !ok {
			// Missing keys are distinguishable from any encoded value.
			parts = append(parts, "\x00missing")
			continue
		}
		encoded, err := models.MarshalValue(value)
		if err != nil {
			parts = append(parts, "\x00unencodable")
			continue
		}
		parts = append(parts, string(encoded))
	}
	return strings.Join(parts, "\x1f")
}
