package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ChatSaver persists incoming chat messages and resolves who else is in
// the room.
type ChatSaver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Client is one WebSocket connection.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	chats  ChatSaver
	log    *logrus.Logger
	userID uuid.UUID
	send   chan []byte
}

func NewClient(conn *websocket.Conn, hub *Hub, chats ChatSaver, log *logrus.Logger, userID uuid.UUID) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		chats:  chats,
		log:    log,
		userID: userID,
		send:   make(chan []byte, 16),
	}
}

// Run pumps messages in both directions until the connection dies.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) Close() {
	c.hub.Unregister(c)
	c.conn.Close()
}

// inboundMessage is what the browser sends: a chat message.
type inboundMessage struct {
	ChatID uuid.UUID `json:"chat_id"`
	Body   string    `json:"body"`
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(64 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).WithField("user_id", c.userID).Debug("ws read failed")
			}
			return
		}

		var in inboundMessage
		if err := json.Unmarshal(raw, &in); err != nil || in.Body == "" {
			continue
		}
		c.handleChatMessage(ctx, in)
	}
}

func (c *Client) handleChatMessage(ctx context.Context, in inboundMessage) {
	chat, err := c.chats.GetByID(ctx, in.ChatID)
	if err != nil {
		c.log.WithError(err).WithField("chat_id", in.ChatID).Debug("ws chat lookup failed")
		return
	}
	if chat.CustomerID != c.userID && chat.WorkerID != c.userID {
		return
	}

	msg := &models.ChatMessage{
		ChatID:   in.ChatID,
		SenderID: c.userID,
		Body:     in.Body,
	}
	if err := c.chats.SaveMessage(ctx, msg); err != nil {
		c.log.WithError(err).WithField("chat_id", in.ChatID).Error("ws message save failed")
		return
	}

	_ = c.hub.SendToUser(chat.CustomerID, "chat_message", msg)
	_ = c.hub.SendToUser(chat.WorkerID, "chat_message", msg)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
