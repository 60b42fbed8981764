package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The endpoint is same-origin only in the bundled web client, but the
	// server is also used with native clients that send no Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection registered with the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	sid  string
}

// SID returns the session id assigned to this connection.
func (c *Client) SID() string {
	return c.sid
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// it with the hub. The assigned sid is pushed to the client as the first
// frame so it can tag its HTTP mutations for sender exclusion.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		sid:  newSID(),
	}
	h.register(client)

	if frame, err := json.Marshal(Envelope{Event: "sid", Data: client.sid}); err == nil {
		client.send <- frame
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads frames until the connection drops. The only client-sent
// event is progress, which is relayed to the public room without echoing
// back to the sender.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn(context.Background(), "websocket read error", "sid", c.sid, "error", err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}

		switch envelope.Event {
		case EventProgress:
			c.hub.Emit(EventProgress, envelope.Data, RoomPublic, c.sid)
		case EventLeaveRoom:
			// Joining the private room goes through the authenticated
			// HTTP endpoints; leaving needs no proof.
			if room, ok := envelope.Data.(string); ok {
				c.hub.LeaveRoom(c.sid, room)
			}
		}
	}
}

// writePump forwards hub frames to the connection and keeps it alive with
// pings. It exits when the hub closes the send channel.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
