package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thorzos/handyhub-backend/internal/http/handlers/common"
	"github.com/thorzos/handyhub-backend/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// List handles GET /chats.
func (h *ChatHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	chats, err := h.chats.List(c.Request.Context(), userID)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// Messages handles GET /chats/:id/messages.
func (h *ChatHandler) Messages(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	chatID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	messages, err := h.chats.Messages(c.Request.Context(), chatID, userID, limit, offset)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
