package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/service"
	"github.com/thorzos/handyhub-backend/internal/ws"
)

// WSHandler upgrades connections for live chat and notifications.
type WSHandler struct {
	hub          *ws.Hub
	chats        ws.ChatSaver
	tokenManager *service.TokenManager
	log          *logrus.Logger
	upgrader     websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, chats ws.ChatSaver, tokens *service.TokenManager, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		hub:          hub,
		chats:        chats,
		tokenManager: tokens,
		log:          log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle serves GET /ws?token=...
// The browser WebSocket API cannot set headers, so the token rides in
// the query string.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token is required"})
		return
	}

	userID, _, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil || userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	client := ws.NewClient(conn, h.hub, h.chats, h.log, userID)
	h.hub.Register(client)

	client.Run(c.Request.Context())
}
