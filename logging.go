package courier

import (
	"context"
	"unicode/utf8"
)

// TrafficLogger is an interface for logging the bodies of outgoing requests
// and incoming responses.
type TrafficLogger interface {
	// LogSend logs the body of a request that is about to be sent.
	//
	// body is truncated to the client's maximum log length. size is the
	// length of the untruncated body, in bytes.
	LogSend(ctx context.Context, body string, size int)

	// LogReceive logs the body of a response that has been read in full.
	//
	// body is truncated to the client's maximum log length. size is the
	// length of the untruncated body, in bytes.
	LogReceive(ctx context.Context, body string, size int)
}

// truncateBody returns body cut to at most max bytes, without splitting a
// multi-byte rune.
func truncateBody(body []byte, max uint32) string {
	if uint64(len(body)) <= uint64(max) {
		return string(body)
	}

	n := int(max)
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}

	return string(body[:n])
}
