package calllog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// APIError is a business rejection reported by the platform API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("platform api: status %d", e.StatusCode)
}

// Client talks to the platform's team-logs API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// List fetches the call-log records for one member of a team.
func (c *Client) List(ctx context.Context, teamID, memberID string) ([]Record, error) {
	if teamID == "" || memberID == "" {
		return nil, ErrInvalidArgument
	}

	q := url.Values{}
	q.Set("teamId", teamID)
	q.Set("memberId", memberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/team-logs?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch team logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("team logs for member %s: %w", memberID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out []Record
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode team logs: %w", err)
	}
	return out, nil
}

// SaveFeedback updates the manager feedback on the record matched by the
// (member_id, session_id) pair.
func (c *Client) SaveFeedback(ctx context.Context, memberID, sessionID, feedback string) error {
	if memberID == "" || sessionID == "" {
		return ErrInvalidArgument
	}

	q := url.Values{}
	q.Set("member_id", memberID)
	q.Set("session_id", sessionID)

	body, err := json.Marshal(map[string]string{"manager_feedback": feedback})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/team-logs?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// apiError decodes the API's {"error": ...} / {"message": ...} body into
// an APIError, tolerating bodies that are not JSON.
func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
