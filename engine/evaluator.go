package engine

import (
	"io"
	"sort"

	"github.com/dalibo/querylog/query"
	"github.com/dalibo/querylog/record"
	"github.com/dalibo/querylog/table"
)

type groupEntry struct {
	key     []string
	reducer *ReducerSet
}

// Evaluator is the single-pass streaming query evaluator: it applies the
// filter to each record and either formats it immediately (non-aggregate)
// or folds it into a group/global reducer (aggregate), emitting the sorted,
// limited result at Finalize.
type Evaluator struct {
	schema    *record.Schema
	query     *query.Query
	aggregate bool

	groupMap      map[string]*groupEntry
	globalReducer *ReducerSet
	formatter     *table.Formatter
	printedCount  int
}

// Style controls decorative, content-preserving output options layered on
// top of the table formatter: color bolds the header row, and termWidth
// (0 = unknown) caps printed rule length to the terminal.
type Style struct {
	Color     bool
	TermWidth int
}

// New builds an Evaluator. q.ComputedShow must already be set (via
// query.ComputeShow) before calling this.
func New(w io.Writer, q *query.Query, schema *record.Schema, style Style) *Evaluator {
	aggregate := query.IsAggregate(q)

	var groupCols []string
	if q.Grouping != nil {
		groupCols = q.Grouping.Columns
	}
	sortField, sortDesc := "", false
	if q.Sort != nil {
		sortField, sortDesc = q.Sort.Field, q.Sort.Desc
	}

	formatter := table.New(w, q.ComputedShow, groupCols, sortField, sortDesc, schema)
	formatter.SetStyle(style.Color, style.TermWidth)

	e := &Evaluator{
		schema:        schema,
		query:         q,
		aggregate:     aggregate,
		groupMap:      make(map[string]*groupEntry),
		globalReducer: NewReducerSet(q.ComputedShow),
		formatter:     formatter,
	}
	if !aggregate {
		formatter.WriteHeader()
	}
	return e
}

// Evaluate applies the filter to rec and either streams a formatted row or
// folds rec into the appropriate reducer.
func (e *Evaluator) Evaluate(rec *record.Record) {
	if !EvaluateFilter(e.query.Filter, rec, e.schema) {
		return
	}
	if e.aggregate {
		e.foldRecord(rec)
		return
	}
	if e.query.Limit != nil && e.printedCount >= e.query.Limit.N {
		return
	}
	e.formatter.WriteRecord(rec, e.schema)
	e.printedCount++
}

func (e *Evaluator) foldRecord(rec *record.Record) {
	if e.query.Grouping == nil {
		e.globalReducer.Apply(rec, e.schema)
		return
	}
	key, values := GroupKey(e.query.Grouping.Columns, rec, e.schema)
	entry, ok := e.groupMap[key]
	if !ok {
		entry = &groupEntry{key: values, reducer: NewReducerSet(e.query.ComputedShow)}
		e.groupMap[key] = entry
	}
	entry.reducer.Apply(rec, e.schema)
}

// ShouldStop reports whether the driver may stop feeding records: only true
// in non-aggregate mode once the limit has been reached. Aggregate mode
// never stops early — the full stream is required for correct reductions.
func (e *Evaluator) ShouldStop() bool {
	if e.aggregate || e.query.Limit == nil {
		return false
	}
	return e.printedCount >= e.query.Limit.N
}

// Finalize sorts and limits aggregate results (streaming rows were already
// emitted as they arrived) and prints the closing rule.
func (e *Evaluator) Finalize() {
	if e.aggregate {
		e.formatter.WriteHeader()
		if e.query.Grouping != nil {
			e.finalizeGrouped()
		} else {
			e.formatter.WriteReduced(e.globalReducer)
		}
	}
	e.formatter.WriteFooter()
}

func (e *Evaluator) finalizeGrouped() {
	entries := make([]*groupEntry, 0, len(e.groupMap))
	for _, v := range e.groupMap {
		entries = append(entries, v)
	}
	if e.formatter.Sortable() {
		sort.Slice(entries, func(i, j int) bool {
			return e.formatter.CompareGroups(entries[i].key, entries[i].reducer, entries[j].key, entries[j].reducer) < 0
		})
	}
	limit := -1
	if e.query.Limit != nil {
		limit = e.query.Limit.N
	}
	for i, entry := range entries {
		if limit >= 0 && i >= limit {
			break
		}
		e.formatter.WriteGroup(entry.key, entry.reducer)
	}
}
