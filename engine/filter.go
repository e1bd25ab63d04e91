// Package engine is the streaming query evaluator: filter-tree evaluation,
// the per-group reducer registry, and sort+limit over the computed show.
package engine

import (
	"bytes"
	"strings"
	"time"

	"github.com/dalibo/querylog/query"
	"github.com/dalibo/querylog/record"
)

// EvaluateFilter recursively evaluates a filter tree against rec, with
// short-circuit AND/OR. A nil filter matches every record.
func EvaluateFilter(f query.Filter, rec *record.Record, schema *record.Schema) bool {
	if f == nil {
		return true
	}
	switch v := f.(type) {
	case query.AndFilter:
		return EvaluateFilter(v.Left, rec, schema) && EvaluateFilter(v.Right, rec, schema)
	case query.OrFilter:
		return EvaluateFilter(v.Left, rec, schema) || EvaluateFilter(v.Right, rec, schema)
	case query.BinaryFilter:
		return evaluateBinary(v, rec, schema)
	}
	return false
}

func evaluateBinary(f query.BinaryFilter, rec *record.Record, schema *record.Schema) bool {
	switch f.Op {
	case query.Eq:
		return evaluateEq(f.LHS, f.RHS, rec, schema)
	case query.Ne:
		return !evaluateEq(f.LHS, f.RHS, rec, schema)
	case query.Lt:
		return evaluateOrder(f.LHS, f.RHS, rec, schema, true)
	case query.Gt:
		return evaluateOrder(f.LHS, f.RHS, rec, schema, false)
	case query.Re:
		return evaluateRe(f.LHS, f.RHS, rec, schema)
	case query.Nr:
		return !evaluateRe(f.LHS, f.RHS, rec, schema)
	}
	return false
}

func evaluateEq(lhs, rhs query.Value, rec *record.Record, schema *record.Schema) bool {
	if _, isNull := rhs.(query.NullValue); isNull {
		_, ok := resolveBytes(lhs, rec, schema)
		return !ok
	}
	lb, lok := resolveBytes(lhs, rec, schema)
	rb, rok := resolveBytes(rhs, rec, schema)
	if !lok || !rok {
		return false
	}
	return bytes.Equal(lb, rb)
}

// evaluateOrder implements lt (asLess=true) and gt (asLess=false). A Date
// rhs dispatches to chronological comparison of the lhs symbol; otherwise
// both operands compare as raw bytes lexicographically. Missing lhs is
// always false, per the evaluator's design.
func evaluateOrder(lhs, rhs query.Value, rec *record.Record, schema *record.Schema, asLess bool) bool {
	if dv, ok := rhs.(query.DateValue); ok {
		ld, ok := resolveDate(lhs, rec, schema)
		if !ok {
			return false
		}
		if asLess {
			return ld.Before(dv.T)
		}
		return ld.After(dv.T)
	}
	lb, lok := resolveBytes(lhs, rec, schema)
	rb, rok := resolveBytes(rhs, rec, schema)
	if !lok || !rok {
		return false
	}
	cmp := bytes.Compare(lb, rb)
	if asLess {
		return cmp < 0
	}
	return cmp > 0
}

func evaluateRe(lhs, rhs query.Value, rec *record.Record, schema *record.Schema) bool {
	sym, ok := lhs.(query.Symbol)
	if !ok {
		return false
	}
	col, ok := schema.Column(sym.Name)
	if !ok {
		return false
	}
	s, ok := col.StringValue(rec)
	if !ok {
		return false
	}
	switch v := rhs.(type) {
	case query.RegexValue:
		return v.Re.MatchString(s)
	case query.TextValue:
		return strings.Contains(s, v.Str)
	}
	return false
}

// resolveBytes returns the raw byte representation of a value: a literal's
// own bytes, or a symbol's column bytes.
func resolveBytes(v query.Value, rec *record.Record, schema *record.Schema) ([]byte, bool) {
	switch val := v.(type) {
	case query.Symbol:
		col, ok := schema.Column(val.Name)
		if !ok {
			return nil, false
		}
		b := col.Bytes(rec)
		if b == nil {
			return nil, false
		}
		return b, true
	case query.TextValue:
		return val.Bytes, true
	case query.IntValue:
		return val.Bytes, true
	case query.DoubleValue:
		return val.Bytes, true
	case query.BoolValue:
		if val.B {
			return []byte("true"), true
		}
		return []byte("false"), true
	}
	return nil, false
}

func resolveDate(v query.Value, rec *record.Record, schema *record.Schema) (time.Time, bool) {
	sym, ok := v.(query.Symbol)
	if !ok {
		return time.Time{}, false
	}
	col, ok := schema.Column(sym.Name)
	if !ok {
		return time.Time{}, false
	}
	return col.DateValue(rec)
}
