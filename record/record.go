package record

import (
	"strconv"
	"time"
)

// Record is a reusable tokenized NGINX combined-log line. One instance is
// allocated by the goroutine that tokenizes and evaluates lines, and is
// repopulated by Tokenize on every line; its typed
// accessors memoize their decode into a parsed cache that Tokenize clears.
type Record struct {
	ip        []byte
	date      []byte
	method    []byte
	path      []byte
	query     []byte
	status    []byte
	bytes     []byte
	referrer  []byte
	userAgent []byte

	ipCache        cached[string]
	dateCache      cached[time.Time]
	methodCache    cached[string]
	pathCache      cached[string]
	queryCache     cached[string]
	statusCache    cached[int64]
	bytesCache     cached[int64]
	referrerCache  cached[string]
	userAgentCache cached[string]
}

// NewRecord returns an empty reusable record ready for Tokenize.
func NewRecord() *Record {
	return &Record{}
}

func isMissingBytes(b []byte) bool {
	return len(b) == 0
}

func isMissingText(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := string(b)
	return s == "-" || s == "\"-\""
}

func emptyOpt(b []byte) []byte {
	if isMissingBytes(b) {
		return nil
	}
	return b
}

func emptyTextOpt(b []byte) []byte {
	if isMissingText(b) {
		return nil
	}
	return b
}

// NginxSchema returns the fixed nine-column NGINX combined-log schema, its
// extractors bound to *Record via closures.
func NginxSchema() *Schema { return nginxSchema }

var nginxSchema = buildNginxSchema()

func buildNginxSchema() *Schema {
	cols := []*ColumnDef{
		{
			Name: "ip", Kind: Text, Width: 15,
			bytesFn: func(r *Record) []byte { return emptyOpt(r.ip) },
			textFn:  func(r *Record) (string, bool) { return r.decodeIP() },
		},
		{
			Name: "date", Kind: Date, Width: 26,
			bytesFn: func(r *Record) []byte { return emptyOpt(r.date) },
			dateFn:  func(r *Record) (time.Time, bool) { return r.decodeDate() },
		},
		{
			Name: "method", Kind: Text, Width: 5,
			bytesFn: func(r *Record) []byte { return emptyTextOpt(r.method) },
			textFn:  func(r *Record) (string, bool) { return r.decodeMethod() },
		},
		{
			Name: "path", Kind: Text, Width: 20,
			bytesFn: func(r *Record) []byte { return emptyOpt(r.path) },
			textFn:  func(r *Record) (string, bool) { return r.decodePath() },
		},
		{
			Name: "query", Kind: Text, Width: 50,
			bytesFn: func(r *Record) []byte { return emptyTextOpt(r.query) },
			textFn:  func(r *Record) (string, bool) { return r.decodeQuery() },
		},
		{
			Name: "status", Kind: Integer, Width: 3,
			bytesFn: func(r *Record) []byte { return emptyOpt(r.status) },
			intFn:   func(r *Record) (int64, bool) { return r.decodeStatus() },
		},
		{
			Name: "bytes", Kind: Integer, Width: 10,
			bytesFn: func(r *Record) []byte { return emptyOpt(r.bytes) },
			intFn:   func(r *Record) (int64, bool) { return r.decodeBytes() },
		},
		{
			Name: "referrer", Kind: Text, Width: 50,
			bytesFn: func(r *Record) []byte { return emptyTextOpt(r.referrer) },
			textFn:  func(r *Record) (string, bool) { return r.decodeReferrer() },
		},
		{
			Name: "user_agent", Kind: Text, Width: 50,
			bytesFn: func(r *Record) []byte { return emptyTextOpt(r.userAgent) },
			textFn:  func(r *Record) (string, bool) { return r.decodeUserAgent() },
		},
	}
	return newSchema(cols)
}

func (r *Record) decodeIP() (string, bool) {
	return r.ipCache.get(func() (string, bool) {
		if isMissingBytes(r.ip) {
			return "", false
		}
		return string(r.ip), true
	})
}

func (r *Record) decodeDate() (time.Time, bool) {
	return r.dateCache.get(func() (time.Time, bool) {
		t, err := time.Parse("02/Jan/2006:15:04:05 -0700", string(r.date))
		if err != nil {
			return time.Time{}, false
		}
		return t.Local(), true
	})
}

func (r *Record) decodeMethod() (string, bool) {
	return r.methodCache.get(func() (string, bool) {
		if isMissingText(r.method) {
			return "", false
		}
		return string(r.method), true
	})
}

func (r *Record) decodePath() (string, bool) {
	return r.pathCache.get(func() (string, bool) {
		if isMissingBytes(r.path) {
			return "", false
		}
		return string(r.path), true
	})
}

func (r *Record) decodeQuery() (string, bool) {
	return r.queryCache.get(func() (string, bool) {
		if isMissingText(r.query) {
			return "", false
		}
		return string(r.query), true
	})
}

func (r *Record) decodeStatus() (int64, bool) {
	return r.statusCache.get(func() (int64, bool) {
		if isMissingBytes(r.status) {
			return 0, false
		}
		v, err := strconv.ParseInt(string(r.status), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	})
}

func (r *Record) decodeBytes() (int64, bool) {
	return r.bytesCache.get(func() (int64, bool) {
		if isMissingBytes(r.bytes) {
			return 0, false
		}
		v, err := strconv.ParseInt(string(r.bytes), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	})
}

func (r *Record) decodeReferrer() (string, bool) {
	return r.referrerCache.get(func() (string, bool) {
		if isMissingText(r.referrer) {
			return "", false
		}
		return string(r.referrer), true
	})
}

func (r *Record) decodeUserAgent() (string, bool) {
	return r.userAgentCache.get(func() (string, bool) {
		if isMissingText(r.userAgent) {
			return "", false
		}
		return string(r.userAgent), true
	})
}
