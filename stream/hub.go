// Package stream serves simulation snapshots to websocket clients and feeds
// their edit commands back into the simulation.
package stream

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm-cable/fluidsand/sim"
)

// Format is the wire encoding a client receives snapshots in.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat maps a query value to a format. Empty means JSON.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatMsgpack:
		return FormatMsgpack, true
	}
	return "", false
}

// Hub fans snapshots out to connected clients.
// Publish never blocks: a client whose send buffer is full misses the frame.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	dropped int64

	encode func(*sim.Snapshot, Format) ([]byte, error)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{}), encode: Encode}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("stream client connected", "remote", c.remote, "format", c.format, "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("stream client disconnected", "remote", c.remote, "clients", n)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of frames skipped for slow clients.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Publish encodes snap once per format in use and queues it on every client.
func (h *Hub) Publish(snap *sim.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	// A nil frame marks a format that failed to encode this round
	frames := make(map[Format][]byte, 2)
	for c := range h.clients {
		data, ok := frames[c.format]
		if !ok {
			var err error
			data, err = h.encode(snap, c.format)
			if err != nil {
				slog.Error("failed to encode snapshot", "format", c.format, "error", err)
			}
			frames[c.format] = data
		}
		if data == nil {
			continue
		}

		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

// Encode serializes a snapshot. Msgpack reuses the json field names.
func Encode(snap *sim.Snapshot, f Format) ([]byte, error) {
	if f == FormatMsgpack {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(snap); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.Marshal(snap)
}

// Decode is the inverse of Encode.
func Decode(data []byte, f Format) (*sim.Snapshot, error) {
	var snap sim.Snapshot
	if f == FormatMsgpack {
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&snap); err != nil {
			return nil, err
		}
		return &snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
