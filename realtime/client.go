package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"studentmart/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live websocket connection. It stays anonymous until the peer
// sends user_online, which registers it in the hub's presence map.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	send chan []byte
}

// Handler upgrades the request and starts the client's pumps.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Errorw("websocket upgrade failed", "err", err)
			return
		}

		client := &Client{
			conn: conn,
			hub:  hub,
			send: make(chan []byte, 256),
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Log.Debugw("websocket read error", "err", err)
			}
			return
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Log.Debugw("bad websocket frame", "err", err)
			continue
		}

		switch event.Type {
		case EventUserOnline:
			c.handleUserOnline(event.Payload)
		case EventSendMessage:
			c.handleSendMessage(event.Payload)
		}
	}
}

func (c *Client) handleUserOnline(payload json.RawMessage) {
	var userID string
	if err := json.Unmarshal(payload, &userID); err != nil || userID == "" {
		return
	}
	select {
	case c.hub.identify <- identifyReq{client: c, userID: userID}:
	case <-c.hub.done:
	}
}

func (c *Client) handleSendMessage(payload json.RawMessage) {
	var target struct {
		RecipientID string `json:"recipientId"`
	}
	if err := json.Unmarshal(payload, &target); err != nil || target.RecipientID == "" {
		return
	}
	select {
	case c.hub.forward <- forwardReq{recipientID: target.RecipientID, payload: payload}:
	case <-c.hub.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
