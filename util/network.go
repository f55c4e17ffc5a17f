package util

import (
	"fmt"
	"net"
	"strconv"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ResolveAddr builds a host:port string, validating that the host is a
// numeric IP when noDNS is true.
func ResolveAddr(host string, port int, noDNS bool) (string, error) {
	if noDNS {
		if net.ParseIP(host) == nil {
			return "", fmt.Errorf("cannot parse %q as an IP address (DNS disabled with -N)", host)
		}
	}
	return FormatAddr(host, port), nil
}
