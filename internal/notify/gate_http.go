package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPGate delivers notifications to the preference-gating service over HTTP.
type HTTPGate struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPGate constructs an HTTPGate. An empty baseURL returns nil, which the
// Emitter treats as notifications disabled.
func NewHTTPGate(baseURL string, timeout time.Duration) *HTTPGate {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGate{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Deliver posts the notification. The gate applies user preferences and
// responds 200 whether or not it ultimately delivers.
func (g *HTTPGate) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-Id", n.OrganizationID)
	if n.UserID != "" {
		req.Header.Set("X-User-Id", n.UserID)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification gate returned %d", resp.StatusCode)
	}
	return nil
}
