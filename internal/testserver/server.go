// Package testserver is an in-process mock bridge used by end-to-end
// tests: a real WebSocket server (net/http/httptest +
// gorilla/websocket, matching the client's own transport) driven by a
// per-test scripted Handler instead of a real xComfort bridge. Grounded
// on the teacher's pkg/exchange/testpair.go exported test-infrastructure
// shape (NewXxxPair/Close()), adapted from an in-memory transport pipe
// to a real loopback WebSocket listener since this protocol is
// WebSocket-native.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/websocket"
)

// Handler scripts one connection's worth of server-side protocol
// behavior. It runs for as long as the connection stays open; returning
// drops the connection.
type Handler func(s *Session)

// Server is a mock bridge endpoint.
type Server struct {
	http    *httptest.Server
	handler Handler
}

// New starts a mock bridge server that invokes handler for every
// accepted connection.
func New(handler Handler) *Server {
	srv := &Server{handler: handler}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		srv.handler(newSession(conn))
	})

	srv.http = httptest.NewServer(mux)
	return srv
}

// URL returns the server's ws:// endpoint, suitable for
// bridge.Config.BridgeIP (stripped of the scheme) or direct use as a
// transport.Config.URL.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.http.URL, "http")
}

// Addr returns the "host:port" form expected by bridge.Config.BridgeIP.
func (s *Server) Addr() string {
	return strings.TrimPrefix(s.http.URL, "http://")
}

// Close shuts down the server and any open connection.
func (s *Server) Close() {
	s.http.Close()
}
