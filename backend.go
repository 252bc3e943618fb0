package courier

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/certifi/gocertifi"
)

// An Exchanger performs HTTP exchanges, wherein a request is "exchanged"
// for its response.
//
// A client's exchanger is its backend, optionally wrapped in pipeline
// stages. See Stage.
type Exchanger interface {
	// Ready blocks until the exchanger is able to perform one more
	// exchange, or ctx is canceled.
	//
	// Every call to Exchange() must be preceded by a successful call to
	// Ready(). Backpressure is applied solely via this readiness protocol;
	// exchangers do not queue requests internally.
	Ready(ctx context.Context) error

	// Exchange performs a single HTTP exchange.
	//
	// It never follows redirections and does not read the body of the
	// response.
	Exchange(req *http.Request) (*http.Response, error)
}

// CertificateStore is an enumeration of the sources of trusted root
// certificates available to a client that connects over TLS.
type CertificateStore int

const (
	// NativeCertificateStore trusts the roots in the operating system's
	// certificate store. This is the default.
	NativeCertificateStore CertificateStore = iota

	// WebPKICertificateStore trusts the common set of web PKI roots,
	// regardless of what the operating system trusts.
	WebPKICertificateStore
)

// plainBackend is the backend for "http" targets.
//
// It refuses to perform TLS handshakes, so an exchange with an "https" URL,
// such as a redirection to an encrypted endpoint, fails rather than
// silently negotiating a connection the client was not configured for.
type plainBackend struct {
	client *http.Client
}

func newPlainBackend() *plainBackend {
	return &plainBackend{
		client: newEngine(&http.Transport{
			DialTLSContext: func(context.Context, string, string) (net.Conn, error) {
				return nil, errors.New("https targets are not supported by this client")
			},
		}),
	}
}

func (b *plainBackend) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (b *plainBackend) Exchange(req *http.Request) (*http.Response, error) {
	return b.client.Do(req)
}

// tlsBackend is the backend for "https" targets.
//
// It also exchanges plain "http" requests, which occur when a server
// redirects to an unencrypted URL or when the client is configured to
// force HTTP.
type tlsBackend struct {
	client *http.Client
}

func newTLSBackend(store CertificateStore) (*tlsBackend, error) {
	roots, err := loadRoots(store)
	if err != nil {
		return nil, err
	}

	return &tlsBackend{
		client: newEngine(&http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: roots,
			},
		}),
	}, nil
}

func (b *tlsBackend) Ready(ctx context.Context) error {
	return ctx.Err()
}

func (b *tlsBackend) Exchange(req *http.Request) (*http.Response, error) {
	return b.client.Do(req)
}

// loadRoots returns the certificate pool identified by store.
func loadRoots(store CertificateStore) (*x509.CertPool, error) {
	switch store {
	case NativeCertificateStore:
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCertificateStore, err)
		}
		return pool, nil

	case WebPKICertificateStore:
		pool, err := gocertifi.CACerts()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCertificateStore, err)
		}
		return pool, nil

	default:
		return nil, ErrInvalidCertificateStore
	}
}

// newEngine returns the HTTP client used by a backend.
//
// Redirections are returned to the caller, never followed by the engine;
// the redirection policy is owned by Client. HTTP/2 and transparent
// compression are disabled, the wire protocol is always HTTP/1.1. The
// transport is private to the backend so that connections are never shared
// between clients.
//
// No timeout is set. Deadlines come from the caller's context, or from a
// pipeline stage.
func newEngine(t *http.Transport) *http.Client {
	t.DisableCompression = true
	t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}

	return &http.Client{
		Transport: t,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
