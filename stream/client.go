package stream

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/fluidsand/sim"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendBuffer     = 8
)

// Enqueuer accepts commands for the next simulation tick.
type Enqueuer interface {
	Enqueue(cmds ...sim.Command)
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	format Format
	remote string
}

// readSocket turns incoming text messages into commands until the connection closes.
func (c *client) readSocket(sink Enqueuer, pal Palette) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("stream read failed", "remote", c.remote, "error", err)
			}
			return
		}
		if sink == nil {
			continue
		}

		cmd, err := ParseRequest(msg, pal)
		if err != nil {
			slog.Debug("rejected stream request", "remote", c.remote, "error", err)
			continue
		}
		sink.Enqueue(cmd)
	}
}

// writeSocket drains the send queue and keeps the connection alive with pings.
func (c *client) writeSocket() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	msgType := websocket.TextMessage
	if c.format == FormatMsgpack {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msgType, data); err != nil {
				slog.Debug("stream write failed", "remote", c.remote, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
