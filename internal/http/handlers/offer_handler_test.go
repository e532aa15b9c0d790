package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/thorzos/handyhub-backend/internal/http/middleware"
)

func TestOfferHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OfferHandler{offers: nil}
	r.POST("/offers", handler.Create)

	req, _ := http.NewRequest("POST", "/offers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOfferHandler_Accept_InvalidOfferID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	})
	handler := &OfferHandler{offers: nil}
	r.POST("/offers/:id/accept", handler.Accept)

	req, _ := http.NewRequest("POST", "/offers/not-a-uuid/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOfferHandler_Create_MissingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, "worker")
		c.Next()
	})
	handler := &OfferHandler{offers: nil}
	r.POST("/offers", handler.Create)

	req, _ := http.NewRequest("POST", "/offers", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
