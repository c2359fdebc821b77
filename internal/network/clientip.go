package network

import (
	"net"
	"strings"
)

// ClientIP is the address breakdown served by /ip. Exactly one of the two
// views is populated; the other stays nil and renders as null.
type ClientIP struct {
	IP            string
	IPv4          *string
	IPv6          *string
	IPv4Available bool
	IPv6Available bool
}

// ExtractClientIP picks the caller's address, preferring the X-Forwarded-For
// value set by the fronting proxy over the socket peer, and splits it into
// the v4/v6 views. A dotted address counts as IPv4; v4-mapped v6 forms have
// their ::ffff: prefix dropped.
func ExtractClientIP(remoteAddr, forwardedFor string) ClientIP {
	ip := strings.TrimSpace(forwardedFor)
	if ip == "" {
		ip = hostOf(remoteAddr)
	}

	out := ClientIP{IP: ip}
	if strings.Contains(ip, ".") {
		v4 := strings.ReplaceAll(ip, "::ffff:", "")
		out.IPv4 = &v4
		out.IPv4Available = true
	} else {
		v6 := ip
		out.IPv6 = &v6
		out.IPv6Available = true
	}
	return out
}

func hostOf(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
