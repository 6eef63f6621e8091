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

	"brightlend/internal/models"
)

// Notification is the payload handed to the device notification layer. Data
// round-trips back on tap so the client can reopen the lead's detail view.
type Notification struct {
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Data  NotificationData `json:"data"`
}

type NotificationData struct {
	LeadKey models.LeadKey `json:"leadKey"`
}

// PushClient talks to the push gateway that fans reminders out to the staff
// mobile app. DryRun skips HTTP entirely (local dev, tests).
type PushClient struct {
	baseURL string
	apiKey  string
	dryRun  bool
	client  *http.Client
}

func NewPushClient(baseURL, apiKey string, dryRun bool) *PushClient {
	return &PushClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		dryRun:  dryRun,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type pushResp struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// Authorized reports whether the user has granted notification delivery
// (i.e. has a registered device with permission). Denial disables scheduling
// for the rest of the session; callers must not re-prompt automatically.
func (p *PushClient) Authorized(ctx context.Context, userID int64) (bool, error) {
	if p.dryRun || p.apiKey == "" {
		log.Printf("[push][dry-run] permission check user=%d -> granted", userID)
		return true, nil
	}

	url := fmt.Sprintf("%s/v1/permissions/%d", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("push permission request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var api pushResp
	_ = json.Unmarshal(body, &api)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("push gateway status=%d desc=%s", resp.StatusCode, api.Description)
	}
	return api.Ok, nil
}

// Schedule asks the gateway to deliver the notification at triggerAt. The
// caller is responsible for clamping triggerAt into the future.
func (p *PushClient) Schedule(ctx context.Context, userID int64, triggerAt time.Time, n Notification) error {
	if p.dryRun || p.apiKey == "" {
		log.Printf("[push][dry-run] schedule user=%d at=%s title=%q", userID, triggerAt.Format(time.RFC3339), n.Title)
		return nil
	}

	payload := map[string]interface{}{
		"user_id":    userID,
		"trigger_at": triggerAt.Format(time.RFC3339),
		"notification": map[string]interface{}{
			"title": n.Title,
			"body":  n.Body,
			"data":  n.Data,
		},
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/schedule", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push schedule request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var api pushResp
	_ = json.Unmarshal(body, &api)
	if resp.StatusCode != http.StatusOK || !api.Ok {
		return fmt.Errorf("push schedule failed: status=%d ok=%v desc=%s", resp.StatusCode, api.Ok, api.Description)
	}
	return nil
}
