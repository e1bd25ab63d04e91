package record

import (
	"bytes"
	"errors"
)

// ErrMalformed is returned by Tokenize when a line is missing an expected
// delimiter. Callers log a warning and skip the line; they never abort the
// stream over it. No count of skipped lines is kept.
var ErrMalformed = errors.New("record: malformed log line")

// Tokenize splits one NGINX combined-log line into the record's nine
// columns, reusing the record's existing byte buffers, and clears the
// parsed cache so accessors re-decode on next use. buf may include the
// trailing newline.
func (r *Record) Tokenize(buf []byte) error {
	working := buf

	idx := bytes.IndexByte(working, ' ')
	if idx < 0 {
		return ErrMalformed
	}
	ip := working[:idx]
	working = working[idx+1:]

	// remote user, then identd: two space-delimited tokens, discarded.
	for i := 0; i < 2; i++ {
		idx = bytes.IndexByte(working, ' ')
		if idx < 0 {
			return ErrMalformed
		}
		working = working[idx+1:]
	}

	braceIdx := bytes.IndexByte(working, ']')
	if braceIdx < 0 || len(working) == 0 || working[0] != '[' {
		return ErrMalformed
	}
	date := working[1:braceIdx]
	if braceIdx+3 > len(working) {
		return ErrMalformed
	}
	working = working[braceIdx+3:]

	quoteIdx := bytes.IndexByte(working, '"')
	if quoteIdx < 0 {
		return ErrMalformed
	}
	request := working[:quoteIdx]
	if quoteIdx+2 > len(working) {
		return ErrMalformed
	}
	working = working[quoteIdx+2:]

	var method, path, query []byte
	if reqSpaceIdx := bytes.IndexByte(request, ' '); reqSpaceIdx < 0 {
		method, path, query = nil, request, nil
	} else {
		method = request[:reqSpaceIdx]
		reqWorking := request[reqSpaceIdx+1:]
		spaceIdx := bytes.IndexByte(reqWorking, ' ')
		questionIdx := bytes.IndexByte(reqWorking, '?')
		switch {
		case questionIdx >= 0:
			path = reqWorking[:questionIdx]
		case spaceIdx >= 0:
			path = reqWorking[:spaceIdx]
		default:
			path = reqWorking
		}
		switch {
		case questionIdx >= 0 && spaceIdx >= 0:
			query = reqWorking[questionIdx:spaceIdx]
		case questionIdx >= 0:
			query = reqWorking[questionIdx:]
		default:
			query = nil
		}
	}

	idx = bytes.IndexByte(working, ' ')
	if idx < 0 {
		return ErrMalformed
	}
	status := working[:idx]
	working = working[idx+1:]

	idx = bytes.IndexByte(working, ' ')
	if idx < 0 {
		return ErrMalformed
	}
	bytesField := working[:idx]
	working = working[idx+1:]

	idx = bytes.IndexByte(working, ' ')
	if idx < 2 {
		return ErrMalformed
	}
	referrer := working[1 : idx-1]
	working = working[idx+1:]

	working = bytes.TrimRight(working, "\r\n")
	userAgent := working
	if len(userAgent) >= 2 && userAgent[0] == '"' && userAgent[len(userAgent)-1] == '"' {
		userAgent = userAgent[1 : len(userAgent)-1]
	}

	r.ip = append(r.ip[:0], ip...)
	r.date = append(r.date[:0], date...)
	r.method = append(r.method[:0], method...)
	r.path = append(r.path[:0], path...)
	r.query = append(r.query[:0], query...)
	r.status = append(r.status[:0], status...)
	r.bytes = append(r.bytes[:0], bytesField...)
	r.referrer = append(r.referrer[:0], referrer...)
	r.userAgent = append(r.userAgent[:0], userAgent...)

	r.ipCache.reset()
	r.dateCache.reset()
	r.methodCache.reset()
	r.pathCache.reset()
	r.queryCache.reset()
	r.statusCache.reset()
	r.bytesCache.reset()
	r.referrerCache.reset()
	r.userAgentCache.reset()

	return nil
}
