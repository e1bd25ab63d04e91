// Package table renders the query result as a bordered, auto-sizing padded
// table: one row per record or per group, column widths starting from the
// schema's declared width and growing (capped at 50) as wider values are
// observed.
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/dalibo/querylog/query"
	"github.com/dalibo/querylog/record"
)

const (
	boldEscape  = "\033[1m"
	resetEscape = "\033[0m"
)

const maxWidth = 50
const defaultReducerWidth = 10

// ReducerResults is the minimal view a formatter needs into a group's (or
// the global) reducer vector, satisfied by engine.ReducerSet.
type ReducerResults interface {
	FieldResult(idx int) (uint64, bool)
}

// field is one output column: a plain symbol, a grouping column pulled from
// a group key, or a reducer result pulled from a ReducerResults by index.
// Each variant owns a mutable width that header()/formatRecord grow.
type field interface {
	name() string
	header() string
	formatRecord(rec *record.Record, schema *record.Schema) string
	formatGroup(key []string, red ReducerResults) string
	size() int
	compareGroup(key1 []string, red1 ReducerResults, key2 []string, red2 ReducerResults, desc bool) int
}

// growWidth grows w to fit observed, capped at maxWidth: the column's
// printed width never shrinks and never exceeds the cap.
func growWidth(w int, observed int) int {
	if observed > maxWidth {
		observed = maxWidth
	}
	if observed > w {
		return observed
	}
	return w
}

// pad renders s in a fixed-width cell. %-*s only ever pads to a minimum, so
// content wider than width (a value longer than a column already at the
// maxWidth cap) is truncated here to enforce the cap both ways.
func pad(s string, width int) string {
	if len(s) > width {
		s = s[:width]
	}
	return fmt.Sprintf(" %-*s ", width, s)
}

type symbolField struct {
	symbol string
	width  int
}

func (f *symbolField) name() string { return f.symbol }
func (f *symbolField) header() string {
	f.width = growWidth(f.width, len(f.symbol))
	return pad(f.symbol, f.width)
}
func (f *symbolField) formatRecord(rec *record.Record, schema *record.Schema) string {
	out := "null"
	if col, ok := schema.Column(f.symbol); ok {
		if s, ok := col.StringValue(rec); ok {
			out = s
		}
	}
	f.width = growWidth(f.width, len(out))
	return pad(out, f.width)
}
func (f *symbolField) formatGroup(key []string, red ReducerResults) string {
	f.width = growWidth(f.width, len("null"))
	return pad("null", f.width)
}
func (f *symbolField) size() int { return f.width }
func (f *symbolField) compareGroup(key1 []string, red1 ReducerResults, key2 []string, red2 ReducerResults, desc bool) int {
	return 0
}

type groupField struct {
	symbol string
	idx    int
	width  int
}

func (f *groupField) name() string { return f.symbol }
func (f *groupField) header() string {
	f.width = growWidth(f.width, len(f.symbol))
	return pad(f.symbol, f.width)
}
func (f *groupField) formatRecord(rec *record.Record, schema *record.Schema) string {
	f.width = growWidth(f.width, len("null"))
	return pad("null", f.width)
}
func (f *groupField) formatGroup(key []string, red ReducerResults) string {
	out := "null"
	if f.idx < len(key) {
		out = key[f.idx]
	}
	f.width = growWidth(f.width, len(out))
	return pad(out, f.width)
}
func (f *groupField) size() int { return f.width }
func (f *groupField) compareGroup(key1 []string, red1 ReducerResults, key2 []string, red2 ReducerResults, desc bool) int {
	var v1, v2 string
	ok1, ok2 := f.idx < len(key1), f.idx < len(key2)
	if ok1 {
		v1 = key1[f.idx]
	}
	if ok2 {
		v2 = key2[f.idx]
	}
	return comparePresence(v1, ok1, v2, ok2, desc, strings.Compare)
}

type reducedField struct {
	kind   query.ReducerKind
	symbol string
	idx    int
	width  int
}

func (f *reducedField) name() string { return fmt.Sprintf("%s(%s)", f.kind, f.symbol) }
func (f *reducedField) header() string {
	label := f.name()
	f.width = growWidth(f.width, len(label))
	return pad(label, f.width)
}
func (f *reducedField) formatRecord(rec *record.Record, schema *record.Schema) string {
	f.width = growWidth(f.width, len("null"))
	return pad("null", f.width)
}
func (f *reducedField) formatGroup(key []string, red ReducerResults) string {
	out := "null"
	if red != nil {
		if v, ok := red.FieldResult(f.idx); ok {
			out = fmt.Sprintf("%d", v)
		}
	}
	f.width = growWidth(f.width, len(out))
	return pad(out, f.width)
}
func (f *reducedField) size() int { return f.width }
func (f *reducedField) compareGroup(key1 []string, red1 ReducerResults, key2 []string, red2 ReducerResults, desc bool) int {
	v1, ok1 := uint64(0), false
	v2, ok2 := uint64(0), false
	if red1 != nil {
		v1, ok1 = red1.FieldResult(f.idx)
	}
	if red2 != nil {
		v2, ok2 = red2.FieldResult(f.idx)
	}
	return comparePresence(v1, ok1, v2, ok2, desc, func(a, b uint64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})
}

// comparePresence orders two possibly-missing values: a present value beats
// a missing one, oriented by desc, and missing-vs-missing is a tie.
func comparePresence[T any](v1 T, ok1 bool, v2 T, ok2 bool, desc bool, cmp func(a, b T) int) int {
	switch {
	case ok1 && ok2:
		c := cmp(v1, v2)
		if desc {
			return -c
		}
		return c
	case ok1:
		if desc {
			return -1
		}
		return 1
	case ok2:
		if desc {
			return 1
		}
		return -1
	default:
		return 0
	}
}

// Formatter builds and prints the bordered result table for one query.
type Formatter struct {
	w         io.Writer
	fields    []field
	sortField field
	sortDesc  bool
	color     bool
	termWidth int
}

// New builds a Formatter from a query's computed show. groupCols is the
// query's grouping column list (nil if ungrouped); it determines whether a
// ShowSymbol pulls from the record directly or from a group key slot.
func New(w io.Writer, computedShow *query.Show, groupCols []string, sortField string, sortDesc bool, schema *record.Schema) *Formatter {
	f := &Formatter{w: w, sortDesc: sortDesc}
	reducerIdx := 0
	for _, e := range computedShow.Elements {
		switch v := e.(type) {
		case query.ShowSymbol:
			if idx := indexOf(groupCols, v.Name); idx >= 0 {
				width := defaultReducerWidth
				if col, ok := schema.Column(v.Name); ok {
					width = col.Width
				}
				gf := &groupField{symbol: v.Name, idx: idx, width: width}
				f.fields = append(f.fields, gf)
				if sortField != "" && gf.name() == sortField {
					f.sortField = gf
				}
			} else {
				width := defaultReducerWidth
				if col, ok := schema.Column(v.Name); ok {
					width = col.Width
				}
				sf := &symbolField{symbol: v.Name, width: width}
				f.fields = append(f.fields, sf)
				if sortField != "" && sf.name() == sortField {
					f.sortField = sf
				}
			}
		case query.ShowReducer:
			rf := &reducedField{kind: v.Kind, symbol: v.Name, idx: reducerIdx, width: defaultReducerWidth}
			reducerIdx++
			f.fields = append(f.fields, rf)
			if sortField != "" && rf.name() == sortField {
				f.sortField = rf
			}
		}
	}
	return f
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

// SetStyle configures decorative, content-preserving output options: color
// bolds the header row, and termWidth (0 = unknown/unbounded) caps the
// printed rule length to the terminal so a wide table's border doesn't
// spill past it. Neither affects column widths or cell content.
func (f *Formatter) SetStyle(color bool, termWidth int) {
	f.color = color
	f.termWidth = termWidth
}

// Sortable reports whether the query's sort field matched a projected field.
func (f *Formatter) Sortable() bool { return f.sortField != nil }

// CompareGroups orders two groups by the matched sort field, honoring
// ascending/descending.
func (f *Formatter) CompareGroups(key1 []string, red1 ReducerResults, key2 []string, red2 ReducerResults) int {
	if f.sortField == nil {
		return 0
	}
	return f.sortField.compareGroup(key1, red1, key2, red2, f.sortDesc)
}

// WriteHeader prints the top rule, header row and header rule.
func (f *Formatter) WriteHeader() {
	var row strings.Builder
	row.WriteByte('|')
	for _, fl := range f.fields {
		row.WriteString(fl.header())
		row.WriteByte('|')
	}
	headerLine := row.String()
	rule := strings.Repeat("-", f.ruleLength(len(headerLine)-2))
	fmt.Fprintf(f.w, "+%s+\n", rule)
	if f.color {
		fmt.Fprintln(f.w, boldEscape+headerLine+resetEscape)
	} else {
		fmt.Fprintln(f.w, headerLine)
	}
	fmt.Fprintf(f.w, "|%s|\n", rule)
}

// ruleLength caps a rule's dash count to the terminal width (minus the two
// border characters) when one was configured via SetStyle.
func (f *Formatter) ruleLength(n int) int {
	if f.termWidth > 2 && n > f.termWidth-2 {
		return f.termWidth - 2
	}
	return n
}

// WriteRecord prints one non-aggregate data row.
func (f *Formatter) WriteRecord(rec *record.Record, schema *record.Schema) {
	var row strings.Builder
	row.WriteByte('|')
	for _, fl := range f.fields {
		row.WriteString(fl.formatRecord(rec, schema))
		row.WriteByte('|')
	}
	fmt.Fprintln(f.w, row.String())
}

// WriteGroup prints one grouped-aggregate data row.
func (f *Formatter) WriteGroup(key []string, red ReducerResults) {
	var row strings.Builder
	row.WriteByte('|')
	for _, fl := range f.fields {
		row.WriteString(fl.formatGroup(key, red))
		row.WriteByte('|')
	}
	fmt.Fprintln(f.w, row.String())
}

// WriteReduced prints the single ungrouped-aggregate data row.
func (f *Formatter) WriteReduced(red ReducerResults) {
	f.WriteGroup(nil, red)
}

// WriteFooter prints the closing rule, sized from each field's current
// width (which may have grown past what the header rule reflected).
func (f *Formatter) WriteFooter() {
	length := 1
	for _, fl := range f.fields {
		length += fl.size() + 3
	}
	fmt.Fprintf(f.w, "+%s+\n", strings.Repeat("-", f.ruleLength(length-2)))
}
