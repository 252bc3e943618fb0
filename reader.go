package courier

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// readBody collects the body of a response into memory, enforcing the
// client's maximum response size.
//
// The limit is enforced mid-stream: reading is abandoned as soon as the
// body is known to exceed it, and a Content-Length header that already
// exceeds it fails before any of the body is read. The body is closed in
// all cases.
func readBody(res *http.Response, limit uint32) ([]byte, error) {
	defer res.Body.Close()

	if res.ContentLength >= 0 && uint64(res.ContentLength) > uint64(limit) {
		return nil, ErrRequestTooLarge
	}

	// Preallocate from Content-Length, which the check above has already
	// capped at the limit. An unknown length preallocates nothing.
	var capacity int64
	if res.ContentLength > 0 {
		capacity = res.ContentLength
	}

	buf := bytes.NewBuffer(make([]byte, 0, capacity))

	if _, err := io.Copy(buf, io.LimitReader(res.Body, int64(limit)+1)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if uint64(buf.Len()) > uint64(limit) {
		return nil, ErrRequestTooLarge
	}

	return buf.Bytes(), nil
}

// discardBody drains the body of a response without retaining it, under
// the same limit and with the same failure modes as readBody().
func discardBody(res *http.Response, limit uint32) error {
	defer res.Body.Close()

	if res.ContentLength >= 0 && uint64(res.ContentLength) > uint64(limit) {
		return ErrRequestTooLarge
	}

	n, err := io.Copy(io.Discard, io.LimitReader(res.Body, int64(limit)+1))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if uint64(n) > uint64(limit) {
		return ErrRequestTooLarge
	}

	return nil
}
