package courier

import "net/http"

// headerPair is a single caller-supplied header.
type headerPair struct {
	Name  string
	Value string
}

// buildHeaders returns the header set used for every request sent by a
// client.
//
// The Content-Type and Accept defaults are inserted first, then the
// caller's headers in the order they were configured. A caller header whose
// key matches an already-present key, including one of the defaults,
// replaces its value. Keys are unique within the set.
func buildHeaders(pairs []headerPair) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	for _, p := range pairs {
		h.Set(p.Name, p.Value)
	}

	return h
}
