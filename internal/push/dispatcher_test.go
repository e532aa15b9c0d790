package push

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thorzos/handyhub-backend/internal/models"
	"github.com/thorzos/handyhub-backend/internal/ws"
)

type mockOutbox struct {
	mock.Mock
}

func (m *mockOutbox) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]models.OutboxNotification, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Get(0).([]models.OutboxNotification), args.Error(1)
}

func (m *mockOutbox) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutbox) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSubs struct {
	mock.Mock
}

func (m *mockSubs) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.PushSubscription), args.Error(1)
}

func (m *mockSubs) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	args := m.Called(ctx, userID, endpoint)
	return args.Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, sub models.PushSubscription, note models.OutboxNotification) error {
	args := m.Called(ctx, sub, note)
	return args.Error(0)
}

type fakeHub struct {
	online bool
	sent   []uuid.UUID
}

func (h *fakeHub) SendToUser(userID uuid.UUID, event string, data any) error {
	if !h.online {
		return errors.New("user offline")
	}
	h.sent = append(h.sent, userID)
	return nil
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestDispatcher_Deliver_WebSocketCountsAsDelivered(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	hub := &fakeHub{online: true}
	d := NewDispatcher(outbox, subs, sender, hub, quietLog(), 3)

	note := models.OutboxNotification{ID: uuid.New(), UserID: uuid.New(), Title: "New job offer"}
	subs.On("ListByUser", mock.Anything, note.UserID).Return([]models.PushSubscription{}, nil)
	outbox.On("MarkSent", mock.Anything, note.ID).Return(nil)

	d.deliver(context.Background(), note)

	assert.Equal(t, []uuid.UUID{note.UserID}, hub.sent)
	outbox.AssertCalled(t, "MarkSent", mock.Anything, note.ID)
	outbox.AssertNotCalled(t, "IncrementAttempts", mock.Anything, mock.Anything)
}

func TestDispatcher_Deliver_OfflineWithFailingEndpointRetries(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	d := NewDispatcher(outbox, subs, sender, &fakeHub{online: false}, quietLog(), 3)

	note := models.OutboxNotification{ID: uuid.New(), UserID: uuid.New()}
	sub := models.PushSubscription{ID: uuid.New(), UserID: note.UserID, Endpoint: "https://push.example/1"}

	subs.On("ListByUser", mock.Anything, note.UserID).Return([]models.PushSubscription{sub}, nil)
	sender.On("Send", mock.Anything, sub, note).Return(errors.New("503"))
	outbox.On("IncrementAttempts", mock.Anything, note.ID).Return(nil)

	d.deliver(context.Background(), note)

	outbox.AssertCalled(t, "IncrementAttempts", mock.Anything, note.ID)
	outbox.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

// Same scenario against the real hub: it must refuse delivery for a
// user with no open connections instead of reporting success.
func TestDispatcher_Deliver_RealHubWithoutConnectionsRetries(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	d := NewDispatcher(outbox, subs, sender, ws.NewHub(), quietLog(), 3)

	note := models.OutboxNotification{ID: uuid.New(), UserID: uuid.New()}
	sub := models.PushSubscription{ID: uuid.New(), UserID: note.UserID, Endpoint: "https://push.example/1"}

	subs.On("ListByUser", mock.Anything, note.UserID).Return([]models.PushSubscription{sub}, nil)
	sender.On("Send", mock.Anything, sub, note).Return(errors.New("503"))
	outbox.On("IncrementAttempts", mock.Anything, note.ID).Return(nil)

	d.deliver(context.Background(), note)

	outbox.AssertCalled(t, "IncrementAttempts", mock.Anything, note.ID)
	outbox.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

func TestDispatcher_Deliver_OfflineNoSubscriptionsIsDone(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	d := NewDispatcher(outbox, subs, sender, &fakeHub{online: false}, quietLog(), 3)

	// Nothing to deliver to: the row would loop forever otherwise.
	note := models.OutboxNotification{ID: uuid.New(), UserID: uuid.New()}
	subs.On("ListByUser", mock.Anything, note.UserID).Return([]models.PushSubscription{}, nil)
	outbox.On("MarkSent", mock.Anything, note.ID).Return(nil)

	d.deliver(context.Background(), note)

	outbox.AssertCalled(t, "MarkSent", mock.Anything, note.ID)
}

func TestDispatcher_Deliver_GoneSubscriptionIsDropped(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	d := NewDispatcher(outbox, subs, sender, &fakeHub{online: false}, quietLog(), 3)

	note := models.OutboxNotification{ID: uuid.New(), UserID: uuid.New()}
	dead := models.PushSubscription{ID: uuid.New(), UserID: note.UserID, Endpoint: "https://push.example/dead"}
	live := models.PushSubscription{ID: uuid.New(), UserID: note.UserID, Endpoint: "https://push.example/live"}

	subs.On("ListByUser", mock.Anything, note.UserID).Return([]models.PushSubscription{dead, live}, nil)
	sender.On("Send", mock.Anything, dead, note).Return(ErrSubscriptionGone)
	sender.On("Send", mock.Anything, live, note).Return(nil)
	subs.On("DeleteByEndpoint", mock.Anything, note.UserID, dead.Endpoint).Return(nil)
	outbox.On("MarkSent", mock.Anything, note.ID).Return(nil)

	d.deliver(context.Background(), note)

	subs.AssertCalled(t, "DeleteByEndpoint", mock.Anything, note.UserID, dead.Endpoint)
	outbox.AssertCalled(t, "MarkSent", mock.Anything, note.ID)
}

func TestDispatcher_Sweep_PassesAttemptCap(t *testing.T) {
	outbox := new(mockOutbox)
	subs := new(mockSubs)
	sender := new(mockSender)
	d := NewDispatcher(outbox, subs, sender, &fakeHub{online: false}, quietLog(), 5)

	outbox.On("ListUnsent", mock.Anything, 5, sweepBatchSize).Return([]models.OutboxNotification{}, nil)

	d.sweep()

	outbox.AssertCalled(t, "ListUnsent", mock.Anything, 5, sweepBatchSize)
}
