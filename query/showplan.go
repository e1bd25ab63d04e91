package query

import "github.com/dalibo/querylog/record"

// ComputeShow normalizes the query's raw show clause and grouping into a
// fully concrete computed show, per the case table:
//
//	no show, no grouping           -> every schema column in order
//	no show, grouping G            -> G, then count(*)
//	show contains *, no grouping   -> every schema column in order
//	show has a reducer, grouping G -> G, then the user's reducers
//	show has no reducer, grouping G -> G, then count(*)
//	show has a reducer, no group   -> only the user's reducers
//	show has only symbols, no group -> as written
//
// With grouping, the user's column symbols are always dropped in favour of G.
//
// Everything downstream (the aggregator and the formatter) consumes only
// the computed show, never the user-written one.
func ComputeShow(q *Query, schema *record.Schema) {
	var elements []ShowElement

	switch {
	case q.Show != nil && q.Grouping != nil:
		reducers := filterReducers(q.Show.Elements)
		for _, col := range q.Grouping.Columns {
			elements = append(elements, ShowSymbol{Name: col})
		}
		if len(reducers) == 0 {
			elements = append(elements, ShowReducer{Kind: Count, Name: "*"})
		}
		elements = append(elements, reducers...)

	case q.Show != nil && hasReducer(q.Show.Elements):
		elements = filterReducers(q.Show.Elements)

	case q.Show != nil:
		if hasStar(q.Show.Elements) {
			for _, col := range schema.Ordered {
				elements = append(elements, ShowSymbol{Name: col})
			}
		} else {
			elements = q.Show.Elements
		}

	case q.Grouping != nil:
		for _, col := range q.Grouping.Columns {
			elements = append(elements, ShowSymbol{Name: col})
		}
		elements = append(elements, ShowReducer{Kind: Count, Name: "*"})

	default:
		for _, col := range schema.Ordered {
			elements = append(elements, ShowSymbol{Name: col})
		}
	}

	q.ComputedShow = &Show{Elements: elements}
}

// IsAggregate reports whether the query groups or reduces. Must be called
// after ComputeShow.
func IsAggregate(q *Query) bool {
	return q.Grouping != nil || hasReducer(q.ComputedShow.Elements)
}

func hasReducer(elems []ShowElement) bool {
	for _, e := range elems {
		if _, ok := e.(ShowReducer); ok {
			return true
		}
	}
	return false
}

func filterReducers(elems []ShowElement) []ShowElement {
	var out []ShowElement
	for _, e := range elems {
		if r, ok := e.(ShowReducer); ok {
			out = append(out, r)
		}
	}
	return out
}

func hasStar(elems []ShowElement) bool {
	for _, e := range elems {
		if _, ok := e.(ShowAll); ok {
			return true
		}
	}
	return false
}
