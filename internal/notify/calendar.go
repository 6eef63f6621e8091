package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"brightlend/internal/apperr"
)

// CalendarEvent mirrors what the external calendar integration accepts. No
// guaranteed contract beyond "may silently fail".
type CalendarEvent struct {
	Start           time.Time         `json:"start"`
	DurationMinutes int               `json:"duration_minutes"`
	Title           string            `json:"title"`
	Location        string            `json:"location"`
	Notes           string            `json:"notes"`
	LeadDetails     map[string]string `json:"lead_details"`
}

// CalendarClient is strictly best-effort: every failure path returns an error
// for the caller to log, never to surface.
type CalendarClient struct {
	baseURL string
	client  *http.Client
}

func NewCalendarClient(baseURL string) *CalendarClient {
	return &CalendarClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *CalendarClient) CreateEvent(ctx context.Context, ev CalendarEvent) error {
	if c == nil || c.baseURL == "" {
		log.Printf("[calendar][skip] no calendar integration configured")
		return apperr.ErrIntegrationUnavailable
	}

	b, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/events", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("calendar createEvent failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}
