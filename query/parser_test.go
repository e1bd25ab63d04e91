package query

import (
	"testing"

	"github.com/dalibo/querylog/record"
)

func mustParse(t *testing.T, q string) *Query {
	t.Helper()
	query, err := Parse(q)
	if err != nil {
		t.Fatalf("Parse(%q): %v", q, err)
	}
	return query
}

func TestParseSimpleFilter(t *testing.T) {
	q := mustParse(t, `status = 200`)
	bf, ok := q.Filter.(BinaryFilter)
	if !ok {
		t.Fatalf("expected BinaryFilter, got %T", q.Filter)
	}
	if bf.Op != Eq {
		t.Fatalf("expected Eq, got %v", bf.Op)
	}
	sym, ok := bf.LHS.(Symbol)
	if !ok || sym.Name != "status" {
		t.Fatalf("expected lhs symbol status, got %#v", bf.LHS)
	}
	iv, ok := bf.RHS.(IntValue)
	if !ok || iv.Int != 200 {
		t.Fatalf("expected rhs int 200, got %#v", bf.RHS)
	}
}

func TestParseGroupWithoutFilterOrPipe(t *testing.T) {
	q := mustParse(t, `group ip`)
	if q.Filter != nil {
		t.Fatalf("expected no filter, got %#v", q.Filter)
	}
	if q.Grouping == nil || len(q.Grouping.Columns) != 1 || q.Grouping.Columns[0] != "ip" {
		t.Fatalf("unexpected grouping: %#v", q.Grouping)
	}
}

func TestParseCaseInsensitiveKeywordsAndLoweredSymbols(t *testing.T) {
	q := mustParse(t, `GROUP Status`)
	if q.Grouping == nil || q.Grouping.Columns[0] != "status" {
		t.Fatalf("expected grouping column lowercased to status, got %#v", q.Grouping)
	}
}

func TestParseShowReducers(t *testing.T) {
	q := mustParse(t, `show sum(bytes), avg(bytes), max(bytes)`)
	if len(q.Show.Elements) != 3 {
		t.Fatalf("expected 3 show elements, got %d", len(q.Show.Elements))
	}
	r0 := q.Show.Elements[0].(ShowReducer)
	if r0.Kind != Sum || r0.Name != "bytes" {
		t.Fatalf("unexpected first reducer: %#v", r0)
	}
}

func TestParseFilterAndOr(t *testing.T) {
	q := mustParse(t, `status != 200 and method = "GET"`)
	_, ok := q.Filter.(AndFilter)
	if !ok {
		t.Fatalf("expected AndFilter, got %T", q.Filter)
	}

	q2 := mustParse(t, `status = 200 || status = 404`)
	_, ok = q2.Filter.(OrFilter)
	if !ok {
		t.Fatalf("expected OrFilter, got %T", q2.Filter)
	}
}

func TestParsePipeAndFilterCombined(t *testing.T) {
	q := mustParse(t, `status != 200 | group status`)
	if q.Filter == nil {
		t.Fatal("expected a filter")
	}
	if q.Grouping == nil || q.Grouping.Columns[0] != "status" {
		t.Fatalf("unexpected grouping: %#v", q.Grouping)
	}
}

func TestParseSortGluedReducerLabel(t *testing.T) {
	q := mustParse(t, `show ip, count(*) | sort count(*) desc`)
	if q.Sort == nil || q.Sort.Field != "count(*)" || !q.Sort.Desc {
		t.Fatalf("unexpected sort: %#v", q.Sort)
	}
}

func TestParseLimit(t *testing.T) {
	q := mustParse(t, `limit 3`)
	if q.Limit == nil || q.Limit.N != 3 {
		t.Fatalf("unexpected limit: %#v", q.Limit)
	}
}

func TestParseRegexAndDateLiterals(t *testing.T) {
	q := mustParse(t, `path ~ r"^/a"`)
	bf := q.Filter.(BinaryFilter)
	if _, ok := bf.RHS.(RegexValue); !ok {
		t.Fatalf("expected RegexValue, got %#v", bf.RHS)
	}

	q2 := mustParse(t, `date > d"10-01-2020"`)
	bf2 := q2.Filter.(BinaryFilter)
	if _, ok := bf2.RHS.(DateValue); !ok {
		t.Fatalf("expected DateValue, got %#v", bf2.RHS)
	}
}

func TestParseNullComparison(t *testing.T) {
	q := mustParse(t, `referrer = null`)
	bf := q.Filter.(BinaryFilter)
	if _, ok := bf.RHS.(NullValue); !ok {
		t.Fatalf("expected NullValue, got %#v", bf.RHS)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse(`status = `); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestComputeShowCases(t *testing.T) {
	schema := record.NginxSchema()

	q := mustParse(t, ``)
	ComputeShow(q, schema)
	if len(q.ComputedShow.Elements) != len(schema.Ordered) {
		t.Fatalf("no show/no grouping should project every column, got %d", len(q.ComputedShow.Elements))
	}
	if IsAggregate(q) {
		t.Fatal("expected non-aggregate for empty query")
	}

	q2 := mustParse(t, `group ip`)
	ComputeShow(q2, schema)
	if len(q2.ComputedShow.Elements) != 2 {
		t.Fatalf("expected ip + count(*), got %#v", q2.ComputedShow.Elements)
	}
	if !IsAggregate(q2) {
		t.Fatal("expected aggregate when grouping present")
	}

	q3 := mustParse(t, `group ip | show ip, sum(bytes)`)
	ComputeShow(q3, schema)
	if len(q3.ComputedShow.Elements) != 2 {
		t.Fatalf("expected ip + sum(bytes), got %#v", q3.ComputedShow.Elements)
	}
	if _, ok := q3.ComputedShow.Elements[1].(ShowReducer); !ok {
		t.Fatalf("expected reducer second, got %#v", q3.ComputedShow.Elements[1])
	}

	q4 := mustParse(t, `show sum(bytes)`)
	ComputeShow(q4, schema)
	if len(q4.ComputedShow.Elements) != 1 {
		t.Fatalf("expected only the reducer, got %#v", q4.ComputedShow.Elements)
	}
}

func TestComputeShowIdempotent(t *testing.T) {
	schema := record.NginxSchema()
	q := mustParse(t, `group ip | show ip, sum(bytes)`)
	ComputeShow(q, schema)
	first := q.ComputedShow

	q2 := &Query{Show: first, Grouping: q.Grouping}
	ComputeShow(q2, schema)

	if len(q2.ComputedShow.Elements) != len(first.Elements) {
		t.Fatalf("compiling a computed show should be a fixed point: %#v vs %#v", q2.ComputedShow.Elements, first.Elements)
	}
	for i := range first.Elements {
		if showElementLabel(first.Elements[i]) != showElementLabel(q2.ComputedShow.Elements[i]) {
			t.Fatalf("element %d differs: %v vs %v", i, first.Elements[i], q2.ComputedShow.Elements[i])
		}
	}
}

func TestValidateUnknownColumn(t *testing.T) {
	schema := record.NginxSchema()
	q := mustParse(t, `bogus = 1`)
	if err := Validate(q, schema); err == nil {
		t.Fatal("expected validation error for unknown column")
	}
}

func TestValidateKnownColumns(t *testing.T) {
	schema := record.NginxSchema()
	q := mustParse(t, `status = 200 and method = "GET" | group ip | show ip, count(*)`)
	if err := Validate(q, schema); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
