package courier

import (
	"net/url"
	"strings"
)

// normalizeTarget parses and validates a raw target URL, returning its
// canonical form.
//
// The canonical form has no fragment, omits the default port for its
// scheme, and always has a path. tls is true if the target is reached over
// a TLS connection.
func normalizeTarget(raw string) (target string, tls bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, &URLError{Reason: err.Error()}
	}

	switch u.Scheme {
	case "http":
	case "https":
		tls = true
	default:
		return "", false, &URLError{Reason: "url scheme must be http or https"}
	}

	if u.Hostname() == "" {
		return "", false, &URLError{Reason: "url host is missing"}
	}

	u.Fragment = ""
	u.RawFragment = ""

	if p := u.Port(); (u.Scheme == "http" && p == "80") || (u.Scheme == "https" && p == "443") {
		host := u.Hostname()
		if strings.Contains(host, ":") {
			// Hostname() removes the square brackets from an IPv6 literal,
			// they must be restored when rebuilding the host.
			host = "[" + host + "]"
		}
		u.Host = host
	}

	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), tls, nil
}
