package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpd/internal/request"
	"httpd/internal/response"
)

func startTestServer(t *testing.T, setup func(s *Server)) (addr string, stop func()) {
	t.Helper()
	s, err := New("127.0.0.1:0", WithBufferCap(512))
	require.NoError(t, err)
	setup(s)

	done := make(chan struct{})
	go func() {
		_ = s.Run()
		close(done)
	}()

	return s.Addr(), func() {
		s.Stop()
		<-done
	}
}

func TestServerMatchesRegisteredRoute(t *testing.T) {
	addr, stop := startTestServer(t, func(s *Server) {
		s.Handle("/hello/*", func(resp *response.Writer, req *request.Request) {
			name := req.PathVar(0)
			_ = resp.Send(200, len(name[0]))
			_, _ = resp.WriteBodyChunk([]byte(name[0]))
		})
	})
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /hello/world HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", statusLine)
}

func TestServerRespondsNotFoundForUnmatchedRoute(t *testing.T) {
	addr, stop := startTestServer(t, func(s *Server) {
		s.Handle("/known", func(resp *response.Writer, req *request.Request) {
			_ = resp.Send(200, 0)
		})
	})
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /unknown HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\n", statusLine)
}

func TestServerRespondsBadRequestForMalformedStartLine(t *testing.T) {
	addr, stop := startTestServer(t, func(s *Server) {})
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("NOTAREQUEST\r\n\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n", statusLine)
}

func TestStopIsIdempotent(t *testing.T) {
	s, err := New("127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		_ = s.Run()
		close(done)
	}()
	s.Stop()
	s.Stop()
	<-done
}
