package public

import (
	"fmt"
	"net"
	"os"
)

// Listener is the configured listen address, Addr the externally
// reachable base url derived from it.
var (
	Listener string
	Addr     string
)

// genericInterface reports whether host is a catch-all or loopback address
// that is useless in an advertised url
func genericInterface(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// SetListener records the listen address and derives the public address
// unless one was set explicitly before
func SetListener(addr string) (string, error) {
	Listener = addr

	if Addr == "" {
		if _, err := SetAddr(addr); err != nil {
			return Listener, err
		}
	}

	return Listener, nil
}

// SetAddr derives the advertised base url from addr, substituting the
// hostname for generic interfaces
func SetAddr(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}

	if host == "" || genericInterface(host) {
		if host, err = os.Hostname(); err != nil {
			return "", err
		}
	}

	Addr = fmt.Sprintf("http://%s:%s", host, port)

	return Addr, nil
}
