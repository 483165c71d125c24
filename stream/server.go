package stream

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes a hub over HTTP. Clients connect to /ws, optionally with
// ?format=msgpack for binary frames.
type Server struct {
	hub     *Hub
	sink    Enqueuer
	palette Palette
	http    http.Server
}

// NewServer creates a server for hub on addr. Commands from clients go to sink;
// a nil sink makes the stream read-only.
func NewServer(addr string, hub *Hub, sink Enqueuer, pal Palette) *Server {
	s := &Server{hub: hub, sink: sink, palette: pal}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)
	s.http = http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.Debug("http request", "remote", r.RemoteAddr, "method", r.Method, "url", r.URL.String())
			mux.ServeHTTP(w, r)
		}),
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	slog.Info("stream server listening", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	format, ok := ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		var hs websocket.HandshakeError
		if !errors.As(err, &hs) {
			slog.Warn("websocket upgrade failed", "error", err)
		}
		return
	}

	c := &client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		format: format,
		remote: r.RemoteAddr,
	}
	s.hub.register(c)

	go c.writeSocket()
	go c.readSocket(s.sink, s.palette)
}
