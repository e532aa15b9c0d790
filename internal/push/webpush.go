package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thorzos/handyhub-backend/internal/models"
)

// payload is what the service worker receives.
type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag"`
}

// EndpointSender posts notification payloads to browser push endpoints.
type EndpointSender struct {
	http *http.Client
}

func NewEndpointSender(timeout time.Duration) *EndpointSender {
	return &EndpointSender{
		http: &http.Client{Timeout: timeout},
	}
}

// Send delivers one notification to one subscription. A 404 or 410 from
// the endpoint means the subscription is gone; the caller should drop it.
func (s *EndpointSender) Send(ctx context.Context, sub models.PushSubscription, note models.OutboxNotification) error {
	body, err := json.Marshal(payload{
		Title: note.Title,
		Body:  note.Body,
		URL:   note.URL,
		Tag:   note.Tag,
	})
	if err != nil {
		return fmt.Errorf("push: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "86400")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("push: send to endpoint: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// ErrSubscriptionGone marks a dead endpoint.
var ErrSubscriptionGone = fmt.Errorf("push: subscription is gone")
