package engine

import (
	"strings"

	"github.com/dalibo/querylog/record"
)

// GroupKey renders each grouping column through its text representation,
// defaulting to the literal "null" for a missing value, and joins them with
// a separator unlikely to appear in rendered log fields. The ordered tuple
// itself (not this joined form) is what a group's formatted output reads
// back from; the join only serves as a comparable Go map key.
func GroupKey(cols []string, rec *record.Record, schema *record.Schema) (string, []string) {
	values := make([]string, len(cols))
	for i, name := range cols {
		values[i] = "null"
		if col, ok := schema.Column(name); ok {
			if s, ok := col.StringValue(rec); ok {
				values[i] = s
			}
		}
	}
	return strings.Join(values, "\x1f"), values
}
