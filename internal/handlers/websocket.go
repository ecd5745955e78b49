package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"casino-minigames/internal/crash"
	"casino-minigames/internal/middleware"
	"casino-minigames/internal/services"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type    string `json:"type"`
	SaveID  string `json:"save_id,omitempty"`
	RoundID string `json:"round_id,omitempty"`
	Data    any    `json:"data"`
}

type Client struct {
	SaveID string
	Conn   *websocket.Conn
	send   chan []byte
}

// WebSocketHub fans messages out to every connection of a save. It implements
// services.Broadcaster and never blocks the caller: a full queue drops the
// message.
type WebSocketHub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	log        *zap.Logger
}

func NewWebSocketHub(log *zap.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log.With(zap.String("component", "ws")),
	}
}

func (hub *WebSocketHub) Run(ctx context.Context) {
	defer close(hub.done)

	for {
		select {
		case client := <-hub.register:
			if hub.clients[client.SaveID] == nil {
				hub.clients[client.SaveID] = make(map[*Client]struct{})
			}
			hub.clients[client.SaveID][client] = struct{}{}
			hub.log.Debug("client registered", zap.String("save_id", client.SaveID))

		case client := <-hub.unregister:
			hub.remove(client)

		case message := <-hub.broadcast:
			hub.broadcastMessage(message)

		case <-ctx.Done():
			for _, clients := range hub.clients {
				for client := range clients {
					hub.remove(client)
				}
			}
			return
		}
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	clients, ok := hub.clients[client.SaveID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(hub.clients, client.SaveID)
	}
	hub.log.Debug("client unregistered", zap.String("save_id", client.SaveID))
}

func (hub *WebSocketHub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		hub.log.Error("failed to marshal message", zap.String("type", message.Type), zap.Error(err))
		return
	}

	for client := range hub.clients[message.SaveID] {
		select {
		case client.send <- data:
		default:
			hub.log.Warn("client too slow, dropping message", zap.String("save_id", client.SaveID))
		}
	}
}

func (hub *WebSocketHub) publish(msg *Message) {
	select {
	case hub.broadcast <- msg:
	default:
		hub.log.Warn("broadcast queue full", zap.String("type", msg.Type))
	}
}

func (hub *WebSocketHub) Notify(saveID, text string) {
	hub.publish(&Message{
		Type:   "MESSAGE",
		SaveID: saveID,
		Data:   gin.H{"text": text},
	})
}

func (hub *WebSocketHub) BroadcastBalance(saveID string, balance int64) {
	hub.publish(&Message{
		Type:   "BALANCE_UPDATE",
		SaveID: saveID,
		Data:   gin.H{"balance": balance},
	})
}

func (hub *WebSocketHub) BroadcastCrash(saveID, roundID string, snap crash.Snapshot) {
	msgType := "GAME_UPDATE"
	switch snap.Status {
	case crash.StatusCrashed:
		msgType = "GAME_CRASH"
	case crash.StatusCashedOut:
		msgType = "GAME_CASHOUT"
	}

	hub.publish(&Message{
		Type:    msgType,
		SaveID:  saveID,
		RoundID: roundID,
		Data:    snap,
	})
}

type WebSocketHandler struct {
	casino *services.Casino
	hub    *WebSocketHub
}

func NewWebSocketHandler(casino *services.Casino, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{casino: casino, hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	saveID := c.GetString(middleware.KeySaveID)

	profile, err := h.casino.Profile(c.Request.Context(), saveID)
	if err != nil {
		respondError(c, "Failed to open feed", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := &Client{
		SaveID: saveID,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}
	go client.writePump()

	defer func() {
		select {
		case h.hub.unregister <- client:
		case <-h.hub.done:
		}
		conn.Close()
	}()

	h.hub.BroadcastBalance(saveID, profile.Balance)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.hub.log.Warn("websocket error", zap.String("save_id", saveID), zap.Error(err))
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		h.hub.publish(&Message{
			Type:   "PONG",
			SaveID: client.SaveID,
			Data:   gin.H{"timestamp": time.Now().Unix()},
		})
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump() {
	for data := range c.send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

var _ services.Broadcaster = (*WebSocketHub)(nil)
