package credits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// APIError is a business rejection reported by the credits ledger API
// (insufficient balance, member not found, ...).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ledger api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("ledger api: status %d", e.StatusCode)
}

// Client talks to the platform's credits ledger API. The ledger is the
// authority on every balance; the client never computes balances itself.
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

// Users lists the team's members with their balances and automations.
func (c *Client) Users(ctx context.Context, teamID string) ([]User, error) {
	q := url.Values{}
	q.Set("teamId", teamID)

	var out struct {
		Users []User `json:"users"`
	}
	if err := c.get(ctx, q, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Balance fetches one member's current balance.
func (c *Client) Balance(ctx context.Context, teamID, memberID string) (int64, error) {
	q := url.Values{}
	q.Set("teamId", teamID)
	q.Set("memberId", memberID)

	var out struct {
		Credits int64 `json:"credits"`
	}
	if err := c.get(ctx, q, &out); err != nil {
		return 0, err
	}
	return out.Credits, nil
}

func (c *Client) AddCredits(ctx context.Context, fromMemberID, toMemberID, teamID string, amount int64) error {
	return c.post(ctx, map[string]any{
		"action":       ActionAddCredits,
		"fromMemberId": fromMemberID,
		"toMemberId":   toMemberID,
		"teamId":       teamID,
		"amount":       amount,
	})
}

func (c *Client) RemoveCredits(ctx context.Context, memberID, teamID string, amount int64) error {
	return c.post(ctx, map[string]any{
		"action":   ActionRemoveCredits,
		"memberId": memberID,
		"teamId":   teamID,
		"amount":   amount,
	})
}

// UpdateMonthlyCredits sets, changes or (with amount 0) cancels a
// monthly automation from manager to member.
func (c *Client) UpdateMonthlyCredits(ctx context.Context, managerID, memberID, teamID string, amount int64) error {
	return c.post(ctx, map[string]any{
		"action":    ActionUpdateMonthlyCredits,
		"managerId": managerID,
		"memberId":  memberID,
		"teamId":    teamID,
		"amount":    amount,
	})
}

func (c *Client) RemoveUser(ctx context.Context, memberID, teamID string) error {
	return c.post(ctx, map[string]any{
		"action":   ActionRemoveUser,
		"memberId": memberID,
		"teamId":   teamID,
	})
}

func (c *Client) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/credits?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch credits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode credits response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/credits", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	// The ledger treats repeated keys as the same posting on retries.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post credits action: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
