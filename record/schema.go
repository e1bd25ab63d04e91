// Package record defines the fixed NGINX access-log column schema and the
// reusable, lazily-decoded record that the tokenizer fills one line at a time.
package record

import (
	"strconv"
	"time"
)

// Kind tags the payload a ColumnDef carries. Columns are a closed, enumerated
// set rather than a class hierarchy: everything downstream dispatches on Kind
// once instead of type-switching on a family of column types.
type Kind int

const (
	Integer Kind = iota
	Double
	Text
	Date
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Double:
		return "double"
	case Text:
		return "text"
	case Date:
		return "date"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ColumnDef describes one schema column: its declared display width, its
// binary extractor (raw bytes, or nil when the value is missing) and its
// typed extractor for the Kind it carries. Only the extractor matching Kind
// is populated; the rest stay nil.
type ColumnDef struct {
	Name  string
	Kind  Kind
	Width int

	bytesFn  func(r *Record) []byte
	textFn   func(r *Record) (string, bool)
	intFn    func(r *Record) (int64, bool)
	doubleFn func(r *Record) (float64, bool)
	dateFn   func(r *Record) (time.Time, bool)
	boolFn   func(r *Record) (bool, bool)
}

// Bytes returns the column's raw byte slice for the record, or nil when the
// value is missing. Used for byte-level eq/ne/lt/gt comparisons.
func (c *ColumnDef) Bytes(r *Record) []byte {
	return c.bytesFn(r)
}

// StringValue renders the column's value as a string for group-key rendering
// and plain projection, regardless of its underlying Kind.
func (c *ColumnDef) StringValue(r *Record) (string, bool) {
	switch c.Kind {
	case Text:
		return c.textFn(r)
	case Integer:
		v, ok := c.intFn(r)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	case Date:
		v, ok := c.dateFn(r)
		if !ok {
			return "", false
		}
		return v.Format("02/Jan/2006:15:04:05 -0700"), true
	case Double:
		v, ok := c.doubleFn(r)
		if !ok {
			return "", false
		}
		return formatFloat(v), true
	case Boolean:
		v, ok := c.boolFn(r)
		if !ok {
			return "", false
		}
		if v {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// IntValue renders the column as an integer, used by sum/max/avg reducers.
func (c *ColumnDef) IntValue(r *Record) (int64, bool) {
	if c.Kind != Integer {
		return 0, false
	}
	return c.intFn(r)
}

// DateValue decodes the column as a date; only meaningful for Kind == Date.
func (c *ColumnDef) DateValue(r *Record) (time.Time, bool) {
	if c.Kind != Date {
		return time.Time{}, false
	}
	return c.dateFn(r)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Schema is an ordered mapping from column name to definition.
type Schema struct {
	byName  map[string]*ColumnDef
	Ordered []string
}

// Column looks up a column definition by name.
func (s *Schema) Column(name string) (*ColumnDef, bool) {
	c, ok := s.byName[name]
	return c, ok
}

func newSchema(cols []*ColumnDef) *Schema {
	s := &Schema{byName: make(map[string]*ColumnDef, len(cols)), Ordered: make([]string, 0, len(cols))}
	for _, c := range cols {
		s.byName[c.Name] = c
		s.Ordered = append(s.Ordered, c.Name)
	}
	return s
}
