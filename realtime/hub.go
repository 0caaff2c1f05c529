package realtime

import (
	"encoding/json"

	"studentmart/logger"
)

const (
	EventUserOnline     = "user_online"
	EventUserStatus     = "user_status"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
)

// Event is the JSON envelope used on the wire in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StatusPayload is broadcast to every connection when a user goes online or
// offline.
type StatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type identifyReq struct {
	client *Client
	userID string
}

type forwardReq struct {
	recipientID string
	payload     json.RawMessage
}

type lookupReq struct {
	userID string
	reply  chan *Client
}

// Hub is the presence registry plus the best-effort relay. All state lives in
// a single run loop, so connect, identify, disconnect and forwards never race.
// Presence is in-memory only and starts empty on every process restart.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	identify   chan identifyReq
	forward    chan forwardReq
	lookups    chan lookupReq
	done       chan struct{}

	conns map[*Client]bool
	users map[string]*Client
	ids   map[*Client]string
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		identify:   make(chan identifyReq),
		forward:    make(chan forwardReq),
		lookups:    make(chan lookupReq),
		done:       make(chan struct{}),
		conns:      make(map[*Client]bool),
		users:      make(map[string]*Client),
		ids:        make(map[*Client]string),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.conns[c] = true

		case c := <-h.unregister:
			if _, ok := h.conns[c]; ok {
				delete(h.conns, c)
				close(c.send)
			}
			if userID, ok := h.ids[c]; ok {
				delete(h.ids, c)
				// A newer connection may have taken over this user id.
				if h.users[userID] == c {
					delete(h.users, userID)
					h.broadcastStatus(userID, "offline")
				}
			}

		case req := <-h.identify:
			// Last registration wins; a stale connection for the same
			// user keeps running until it disconnects on its own. A
			// connection switching ids gives up its previous one, so no
			// presence entry ever outlives its connection.
			if prev, ok := h.ids[req.client]; ok && prev != req.userID {
				if h.users[prev] == req.client {
					delete(h.users, prev)
					h.broadcastStatus(prev, "offline")
				}
			}
			h.ids[req.client] = req.userID
			h.users[req.userID] = req.client
			h.broadcastStatus(req.userID, "online")
			logger.Log.Infow("user online", "userId", req.userID)

		case req := <-h.forward:
			// No delivery guarantee: an offline recipient means the
			// event is dropped, the durable path is the message store.
			if client, ok := h.users[req.recipientID]; ok {
				h.deliver(client, Event{Type: EventReceiveMessage, Payload: req.payload})
			}

		case req := <-h.lookups:
			req.reply <- h.users[req.userID]

		case <-h.done:
			for c := range h.conns {
				close(c.send)
			}
			h.conns = make(map[*Client]bool)
			h.users = make(map[string]*Client)
			h.ids = make(map[*Client]string)
			return
		}
	}
}

// Shutdown stops the run loop and drops every live connection.
func (h *Hub) Shutdown() {
	close(h.done)
}

// Online reports whether a user currently has a registered connection.
func (h *Hub) Online(userID string) bool {
	reply := make(chan *Client, 1)
	select {
	case h.lookups <- lookupReq{userID: userID, reply: reply}:
		return <-reply != nil
	case <-h.done:
		return false
	}
}

func (h *Hub) broadcastStatus(userID, status string) {
	payload, err := json.Marshal(StatusPayload{UserID: userID, Status: status})
	if err != nil {
		logger.Log.Errorw("marshal status payload", "err", err)
		return
	}
	event := Event{Type: EventUserStatus, Payload: payload}
	for c := range h.conns {
		h.deliver(c, event)
	}
}

func (h *Hub) deliver(c *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("marshal event", "type", event.Type, "err", err)
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer, drop the event rather than block the loop.
	}
}
