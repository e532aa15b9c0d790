package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestHub_SendToUser_OfflineUser(t *testing.T) {
	hub := NewHub()
	err := hub.SendToUser(uuid.New(), "notification", "payload")
	assert.ErrorIs(t, err, ErrOffline)
}

func TestHub_SendToUser_DeliversToEveryConnection(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	first := NewClient(nil, hub, nil, quietLog(), userID)
	second := NewClient(nil, hub, nil, quietLog(), userID)
	hub.addClient(first)
	hub.addClient(second)
	go hub.Run()

	assert.True(t, hub.IsOnline(userID))
	assert.NoError(t, hub.SendToUser(userID, "notification", map[string]string{"tag": "offer"}))

	for _, client := range []*Client{first, second} {
		select {
		case raw := <-client.send:
			var msg struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			assert.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, "offer", msg.Data["tag"])
		case <-time.After(time.Second):
			t.Fatal("message never reached the connection")
		}
	}
}

func TestHub_SendToUser_OfflineAfterLastUnregister(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	client := NewClient(nil, hub, nil, quietLog(), userID)
	hub.addClient(client)
	assert.True(t, hub.IsOnline(userID))

	hub.removeClient(client)
	assert.False(t, hub.IsOnline(userID))
	assert.ErrorIs(t, hub.SendToUser(userID, "notification", nil), ErrOffline)
}
