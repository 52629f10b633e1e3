package credits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier delivers the member-removal notification. Removal must not
// proceed when notification fails.
type Notifier interface {
	MemberRemoved(ctx context.Context, memberID, teamID string) error
}

// WebhookNotifier posts {memberId, teamId} to a fixed external URL.
type WebhookNotifier struct {
	url  string
	http *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) MemberRemoved(ctx context.Context, memberID, teamID string) error {
	body, err := json.Marshal(map[string]string{
		"memberId": memberID,
		"teamId":   teamID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("removal webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("removal webhook: status %d", resp.StatusCode)
	}
	return nil
}
