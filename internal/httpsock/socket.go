// Package httpsock wraps TCP listening and peer-address formatting. The
// "host:port" notation it accepts, and the IPv4-preferring defaulting it
// applies when host is omitted or "localhost", both mirror a traditional
// sockets-level listen/accept API rather than Go's bare net.Listen.
package httpsock

import (
	"net"
	"strings"

	"httpd/internal/httperr"
)

const defaultPort = "80"

// splitAddrRepr parses a "host:port" address representation. An empty
// addr_repr defaults to all interfaces on the default HTTP port. The host
// part may be omitted (":8080") to mean "all interfaces"; it's returned as
// "" in that case, distinct from a host that failed to parse.
func splitAddrRepr(addrRepr string) (host, port string, err error) {
	if addrRepr == "" {
		return "", defaultPort, nil
	}
	if len(addrRepr) < 2 {
		return "", "", httperr.ErrBadAddr
	}

	if addrRepr[0] == '[' {
		closeIdx := strings.IndexByte(addrRepr, ']')
		if closeIdx == -1 || len(addrRepr) <= closeIdx+2 || addrRepr[closeIdx+1] != ':' || closeIdx <= 1 {
			return "", "", httperr.ErrBadAddr
		}
		return addrRepr[1:closeIdx], addrRepr[closeIdx+2:], nil
	}

	colon := strings.IndexByte(addrRepr, ':')
	if colon == -1 || len(addrRepr) <= colon+1 {
		return "", "", httperr.ErrBadAddr
	}
	return addrRepr[:colon], addrRepr[colon+1:], nil
}

// network picks "tcp4" over "tcp" when host is unspecified or "localhost";
// any other host (including an explicit IPv6 literal) resolves however
// net.Listen sees fit.
func network(host string) string {
	if host == "" || host == "localhost" {
		return "tcp4"
	}
	return "tcp"
}

// AddrFormatter is the named boundary between the engine and whatever
// resolves and formats peer addresses. The default implementation wraps
// net.Listen/net.Conn; a caller may substitute a test double (for example
// one backed by net.Pipe) without the parser or server loop knowing.
type AddrFormatter interface {
	Listen(addrRepr string, backlog int) (*Listener, error)
	PeerAddr(conn net.Conn) string
}

// defaultFormatter is the net-backed AddrFormatter used in production.
type defaultFormatter struct{}

// DefaultFormatter is the production AddrFormatter, backed by net.Listen.
var DefaultFormatter AddrFormatter = defaultFormatter{}

func (defaultFormatter) Listen(addrRepr string, backlog int) (*Listener, error) {
	return Listen(addrRepr, backlog)
}

func (defaultFormatter) PeerAddr(conn net.Conn) string {
	return PeerAddr(conn)
}

// Listener wraps a net.Listener, formatted address included for logging.
type Listener struct {
	net.Listener
	Addr string
}

// Listen parses addrRepr and starts listening. backlog is accepted for API
// symmetry with a traditional listen(2) call but isn't otherwise honored:
// net.Listen has no portable way to set it, and the OS default is ample
// for this engine's single-threaded accept loop.
func Listen(addrRepr string, backlog int) (*Listener, error) {
	_ = backlog
	host, port, err := splitAddrRepr(addrRepr)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen(network(host), net.JoinHostPort(host, port))
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return nil, httperr.ErrAddrInUse
		}
		return nil, httperr.Wrap(httperr.ErrBadSocket, err.Error())
	}

	return &Listener{Listener: ln, Addr: ln.Addr().String()}, nil
}

// PeerAddr formats conn's remote address the way the engine reports peers
// in logs and to handlers: host:port, with an IPv6 host bracketed. This is
// exactly what net.Conn.RemoteAddr().String() already produces for a
// *net.TCPAddr, so PeerAddr exists mainly to give that formatting a name
// tied to the engine's own address-representation notation.
func PeerAddr(conn net.Conn) string {
	return conn.RemoteAddr().String()
}
