package clientinfo

import (
	"net"
	"net/http"
	"strings"
)

const (
	ipv4MappedPrefix = "::ffff:"
	ipv6Loopback     = "::1"
	ipv4Loopback     = "127.0.0.1"
)

// NormalizeAddress takes the first non-empty candidate and canonicalises it:
// an IPv4-mapped IPv6 prefix is stripped and the IPv6 loopback becomes
// 127.0.0.1. Anything else passes through unchanged. With no usable
// candidate the result is "".
func NormalizeAddress(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		switch {
		case strings.HasPrefix(strings.ToLower(c), ipv4MappedPrefix):
			return c[len(ipv4MappedPrefix):]
		case c == ipv6Loopback:
			return ipv4Loopback
		default:
			return c
		}
	}
	return ""
}

// ClientAddress returns the normalised caller address of r. Candidates in
// priority order are the first X-Forwarded-For entry, the host part of
// RemoteAddr, RemoteAddr as given, and X-Real-IP.
func ClientAddress(r *http.Request) string {
	forwarded, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")

	return NormalizeAddress(
		forwarded,
		remoteHost(r.RemoteAddr),
		r.RemoteAddr,
		r.Header.Get("X-Real-IP"),
	)
}

// remoteHost strips the port from a RemoteAddr value, returning "" when the
// value has no port.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return host
}
