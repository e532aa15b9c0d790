package push

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/thorzos/handyhub-backend/internal/models"
)

type OutboxRepository interface {
	ListUnsent(ctx context.Context, maxAttempts, limit int) ([]models.OutboxNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}

type SubscriptionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type Sender interface {
	Send(ctx context.Context, sub models.PushSubscription, note models.OutboxNotification) error
}

// LiveHub pushes notifications over open WebSocket connections.
type LiveHub interface {
	SendToUser(userID uuid.UUID, event string, data any) error
}

const sweepBatchSize = 100

// Dispatcher sweeps the notification outbox on a schedule and delivers
// what producers enqueued. Delivery is at-least-once: a row is marked
// sent only after at least one channel took it, and rows that keep
// failing stop being retried once they hit the attempt cap.
type Dispatcher struct {
	outbox      OutboxRepository
	subs        SubscriptionRepository
	sender      Sender
	hub         LiveHub
	log         *logrus.Logger
	maxAttempts int

	cron *cron.Cron
}

func NewDispatcher(outbox OutboxRepository, subs SubscriptionRepository, sender Sender, hub LiveHub, log *logrus.Logger, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		outbox:      outbox,
		subs:        subs,
		sender:      sender,
		hub:         hub,
		log:         log,
		maxAttempts: maxAttempts,
	}
}

// Start schedules the sweep. The schedule uses cron syntax, e.g.
// "@every 5s".
func (d *Dispatcher) Start(schedule string) error {
	d.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	if _, err := d.cron.AddFunc(schedule, d.sweep); err != nil {
		return err
	}
	d.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (d *Dispatcher) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

func (d *Dispatcher) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	notes, err := d.outbox.ListUnsent(ctx, d.maxAttempts, sweepBatchSize)
	if err != nil {
		d.log.WithError(err).Error("outbox sweep failed")
		return
	}

	for _, note := range notes {
		d.deliver(ctx, note)
	}
}

// deliver fans one notification out to every channel of its recipient.
// A failure for one recipient never touches the others.
func (d *Dispatcher) deliver(ctx context.Context, note models.OutboxNotification) {
	delivered := false

	if d.hub != nil {
		if err := d.hub.SendToUser(note.UserID, "notification", note); err == nil {
			delivered = true
		}
	}

	subs, err := d.subs.ListByUser(ctx, note.UserID)
	if err != nil {
		d.log.WithError(err).WithField("user_id", note.UserID).Error("outbox: list subscriptions failed")
	}
	for _, sub := range subs {
		if err := d.sender.Send(ctx, sub, note); err != nil {
			if errors.Is(err, ErrSubscriptionGone) {
				if err := d.subs.DeleteByEndpoint(ctx, sub.UserID, sub.Endpoint); err != nil {
					d.log.WithError(err).Warn("outbox: drop dead subscription failed")
				}
				continue
			}
			d.log.WithError(err).WithFields(logrus.Fields{
				"note_id": note.ID,
				"user_id": note.UserID,
			}).Warn("outbox: push delivery failed")
			continue
		}
		delivered = true
	}

	if delivered || len(subs) == 0 {
		if err := d.outbox.MarkSent(ctx, note.ID); err != nil {
			d.log.WithError(err).WithField("note_id", note.ID).Error("outbox: mark sent failed")
		}
		return
	}

	if err := d.outbox.IncrementAttempts(ctx, note.ID); err != nil {
		d.log.WithError(err).WithField("note_id", note.ID).Error("outbox: increment attempts failed")
	}
}
