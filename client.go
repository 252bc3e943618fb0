package courier

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

// maxRedirections is the number of attempts a single send may make before
// it is abandoned with ErrTooManyRedirects.
const maxRedirections = 32

// Client is an HTTP transport for a JSON-RPC client.
//
// It carries opaque message bodies between the caller and a single target
// URL. It does not interpret JSON-RPC semantics; framing, request IDs and
// response matching are the caller's concern.
//
// A Client is immutable and safe for concurrent use.
type Client struct {
	target          string
	exchanger       Exchanger
	headers         http.Header
	maxRequestSize  uint32
	maxResponseSize uint32
	maxLogLength    uint32
	httpOnly        bool
	logger          TrafficLogger
}

// New returns a client that sends requests to the given target URL.
//
// The target must be an absolute "http" or "https" URL with a host. It is
// stored in canonical form, see Target().
func New(target string, options ...Option) (*Client, error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}

	target, useTLS, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	var backend Exchanger
	if useTLS {
		backend, err = newTLSBackend(opts.store)
		if err != nil {
			return nil, err
		}
	} else {
		backend = newPlainBackend()
	}

	return &Client{
		target:          target,
		exchanger:       newPipeline(backend, opts.stages),
		headers:         buildHeaders(opts.headers),
		maxRequestSize:  opts.maxRequestSize,
		maxResponseSize: opts.maxResponseSize,
		maxLogLength:    opts.maxLogLength,
		httpOnly:        opts.httpOnly,
		logger:          opts.logger,
	}, nil
}

// Target returns the canonical form of the client's target URL.
func (c *Client) Target() string {
	return c.target
}

// SendAndReadBody sends a request with the given body and returns the body
// of the response.
//
// It blocks until the response body has been read in full, the request
// fails, or ctx is canceled.
func (c *Client) SendAndReadBody(ctx context.Context, body []byte) ([]byte, error) {
	res, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}

	resBody, err := readBody(res, c.maxResponseSize)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.LogReceive(ctx, truncateBody(resBody, c.maxLogLength), len(resBody))
	}

	return resBody, nil
}

// Send sends a request with the given body and discards the body of the
// response.
//
// It is a variant of SendAndReadBody() for callers that only need
// confirmation of success. The response body is still drained under the
// client's maximum response size, so oversized and malformed bodies fail
// in the same way.
func (c *Client) Send(ctx context.Context, body []byte) error {
	res, err := c.send(ctx, body)
	if err != nil {
		return err
	}

	return discardBody(res, c.maxResponseSize)
}

// send dispatches a request, following redirections until a terminal
// response is produced. The body of the returned response is unread.
//
// A request is never retried: each attempt is caused by a redirection of
// the previous one.
func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	if c.logger != nil {
		c.logger.LogSend(ctx, truncateBody(body, c.maxLogLength), len(body))
	}

	if uint64(len(body)) > uint64(c.maxRequestSize) {
		return nil, ErrRequestTooLarge
	}

	// target is the cursor over the redirection chain. It is local to this
	// call; concurrent sends on one client never share it.
	target := c.target

	for attempt := 0; attempt < maxRedirections; attempt++ {
		if c.httpOnly {
			if rest, ok := strings.CutPrefix(target, "https://"); ok {
				target = "http://" + rest
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			// The client's own target is pre-validated, so this fires only
			// when a redirection supplies an unparsable Location.
			return nil, &URLError{Reason: err.Error()}
		}
		req.Header = c.headers.Clone()

		if err := c.exchanger.Ready(ctx); err != nil {
			return nil, &HTTPError{Cause: err}
		}

		res, err := c.exchanger.Exchange(req)
		if err != nil {
			return nil, &HTTPError{Cause: err}
		}

		if isRedirection(res.StatusCode) {
			if location := res.Header.Get("Location"); location != "" {
				// The Location value becomes the next target verbatim. It is
				// not resolved against the current URL.
				res.Body.Close()
				target = location
				continue
			}
		}

		if isSuccess(res.StatusCode) {
			return res, nil
		}

		res.Body.Close()

		return nil, &RequestFailureError{StatusCode: res.StatusCode}
	}

	return nil, ErrTooManyRedirects
}

// isSuccess returns true if code indicates a successful request.
func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}

// isRedirection returns true if code asks the client to repeat the request
// at another URL.
func isRedirection(code int) bool {
	return code >= 300 && code <= 399
}
