// Command tcplistener is a raw inspection tool: it accepts one connection
// at a time, runs it through the same staged parser the server uses, and
// prints the parsed request line, headers and body to stdout. Useful for
// watching the parser's stage transitions against a real client without
// the routing machinery in the way.
package main

import (
	"fmt"
	"net"
	"os"
	"sort"

	"httpd/internal/httpparse"
	"httpd/internal/ioreader"
)

const addr = ":42069"

func main() {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: failed to listen:", err)
		os.Exit(1)
	}
	defer ln.Close()

	fmt.Println("Listening for TCP traffic on", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR: failed to accept:", err)
			continue
		}
		handleConn(conn)
	}
}

func handleConn(conn net.Conn) {
	defer conn.Close()

	r := ioreader.New(conn, 4096, conn.RemoteAddr().String())
	defer r.Close()

	p := httpparse.NewParser(r, httpparse.DefaultLimits)
	if err := p.ParseStartLine(); err != nil {
		fmt.Println("ERROR: failed to parse start line:", err)
		return
	}
	if err := p.ParseHeaders(); err != nil {
		fmt.Println("ERROR: failed to parse headers:", err)
		return
	}

	fmt.Printf("Request line:\n- Method: %s\n- Target: %s\n- Version: %d.%d\n",
		p.Method, p.URI, p.Version.Major, p.Version.Minor)

	fmt.Println("Headers:")
	if p.Headers.Len() == 0 {
		fmt.Println("- (none)")
	} else {
		list := p.Headers.List()
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		for _, h := range list {
			fmt.Printf("- %s: %s\n", h.Name, h.Value)
		}
	}

	fmt.Println("Body:")
	if p.ContentLength == 0 {
		fmt.Println("- (none)")
		return
	}
	body := make([]byte, 0, p.ContentLength)
	chunk := make([]byte, 4096)
	for !p.IsFinished() {
		n, err := p.StreamBody(chunk)
		body = append(body, chunk[:n]...)
		if err != nil {
			fmt.Println("ERROR: failed to read body:", err)
			return
		}
	}
	fmt.Println(string(body))
}
