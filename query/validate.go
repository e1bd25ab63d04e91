package query

import (
	"fmt"

	"github.com/dalibo/querylog/record"
)

// Validate traverses the filter tree, grouping list and show list and
// confirms every Symbol names a schema column. It reports the first
// offending symbol; sort validity is only structural (checked by the
// parser) and is not re-verified here — a sort field absent from the
// projection is not a validation error; at runtime the groups are then
// emitted unsorted, in map iteration order.
func Validate(q *Query, schema *record.Schema) error {
	if q.Filter != nil {
		if err := validateFilter(q.Filter, schema); err != nil {
			return err
		}
	}
	if q.Grouping != nil {
		for _, col := range q.Grouping.Columns {
			if _, ok := schema.Column(col); !ok {
				return fmt.Errorf("query: unknown column %q in group", col)
			}
		}
	}
	if q.Show != nil {
		for _, e := range q.Show.Elements {
			if err := validateShowElement(e, schema); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFilter(f Filter, schema *record.Schema) error {
	switch v := f.(type) {
	case AndFilter:
		if err := validateFilter(v.Left, schema); err != nil {
			return err
		}
		return validateFilter(v.Right, schema)
	case OrFilter:
		if err := validateFilter(v.Left, schema); err != nil {
			return err
		}
		return validateFilter(v.Right, schema)
	case BinaryFilter:
		if err := validateValue(v.LHS, schema); err != nil {
			return err
		}
		return validateValue(v.RHS, schema)
	}
	return nil
}

func validateValue(v Value, schema *record.Schema) error {
	if sym, ok := v.(Symbol); ok {
		if _, ok := schema.Column(sym.Name); !ok {
			return fmt.Errorf("query: unknown column %q", sym.Name)
		}
	}
	return nil
}

func validateShowElement(e ShowElement, schema *record.Schema) error {
	switch v := e.(type) {
	case ShowSymbol:
		if _, ok := schema.Column(v.Name); !ok {
			return fmt.Errorf("query: unknown column %q in show", v.Name)
		}
	case ShowReducer:
		if v.Name == "*" {
			return nil
		}
		if _, ok := schema.Column(v.Name); !ok {
			return fmt.Errorf("query: unknown column %q in show", v.Name)
		}
	}
	return nil
}
