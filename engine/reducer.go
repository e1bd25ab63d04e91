package engine

import (
	"github.com/dalibo/querylog/query"
	"github.com/dalibo/querylog/record"
)

// fieldReducer is one aggregate operator applied across a stream of
// records. Each variant is a tiny independent struct; a ReducerSet is just
// an ordered list of these, dispatched through the same three-method shape
// rather than a class hierarchy.
type fieldReducer interface {
	apply(rec *record.Record, schema *record.Schema)
	result() (uint64, bool)
	symbol() string
}

type countReducer struct {
	col   string
	count uint64
}

func (r *countReducer) apply(rec *record.Record, schema *record.Schema) {
	if r.col == "*" {
		r.count++
		return
	}
	c, ok := schema.Column(r.col)
	if !ok {
		return
	}
	if c.Bytes(rec) != nil {
		r.count++
	}
}
func (r *countReducer) result() (uint64, bool) { return r.count, true }
func (r *countReducer) symbol() string         { return r.col }

type sumReducer struct {
	col string
	sum int64
}

func (r *sumReducer) apply(rec *record.Record, schema *record.Schema) {
	c, ok := schema.Column(r.col)
	if !ok {
		return
	}
	if v, ok := c.IntValue(rec); ok {
		r.sum += v
	}
}
func (r *sumReducer) result() (uint64, bool) { return uint64(r.sum), true }
func (r *sumReducer) symbol() string         { return r.col }

type maxReducer struct {
	col string
	max int64
}

func (r *maxReducer) apply(rec *record.Record, schema *record.Schema) {
	c, ok := schema.Column(r.col)
	if !ok {
		return
	}
	if v, ok := c.IntValue(rec); ok && v > r.max {
		r.max = v
	}
}
func (r *maxReducer) result() (uint64, bool) { return uint64(r.max), true }
func (r *maxReducer) symbol() string         { return r.col }

type avgReducer struct {
	col   string
	sum   int64
	count int64
}

func (r *avgReducer) apply(rec *record.Record, schema *record.Schema) {
	c, ok := schema.Column(r.col)
	if !ok {
		return
	}
	if v, ok := c.IntValue(rec); ok {
		r.sum += v
		r.count++
	}
}
func (r *avgReducer) result() (uint64, bool) {
	if r.count == 0 {
		return 0, true
	}
	return uint64(r.sum / r.count), true
}
func (r *avgReducer) symbol() string { return r.col }

// ReducerSet is the ordered vector of field reducers for one group (or the
// single global reducer in ungrouped aggregate mode). It implements
// table.ReducerResults.
type ReducerSet struct {
	reducers []fieldReducer
}

func (rs *ReducerSet) Apply(rec *record.Record, schema *record.Schema) {
	for _, r := range rs.reducers {
		r.apply(rec, schema)
	}
}

// FieldResult returns the idx'th reducer's current result.
func (rs *ReducerSet) FieldResult(idx int) (uint64, bool) {
	if idx < 0 || idx >= len(rs.reducers) {
		return 0, false
	}
	return rs.reducers[idx].result()
}

// NewReducerSet builds a reducer vector from the computed show's reducer
// elements, in order.
func NewReducerSet(show *query.Show) *ReducerSet {
	rs := &ReducerSet{}
	for _, e := range show.Elements {
		r, ok := e.(query.ShowReducer)
		if !ok {
			continue
		}
		rs.reducers = append(rs.reducers, newFieldReducer(r))
	}
	return rs
}

func newFieldReducer(e query.ShowReducer) fieldReducer {
	switch e.Kind {
	case query.Count:
		return &countReducer{col: e.Name}
	case query.Sum:
		return &sumReducer{col: e.Name}
	case query.Max:
		return &maxReducer{col: e.Name}
	case query.Avg:
		return &avgReducer{col: e.Name}
	}
	return &countReducer{col: e.Name}
}
