package credits

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_BalanceAndUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/credits" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("memberId") != "" {
			_ = json.NewEncoder(w).Encode(map[string]int64{"credits": 120})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string][]User{"users": {
			{MemberID: "m1", TeamID: "t1", UserName: "Amy", Credits: 120},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	bal, err := c.Balance(context.Background(), "t1", "m1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if bal != 120 {
		t.Fatalf("expected 120, got %d", bal)
	}

	users, err := c.Users(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(users) != 1 || users[0].UserName != "Amy" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestClient_AddCreditsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Idempotency-Key") == "" {
			t.Fatalf("expected Idempotency-Key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.AddCredits(context.Background(), "mgr", "rep", "t1", 25); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got["action"] != string(ActionAddCredits) {
		t.Fatalf("unexpected action: %v", got["action"])
	}
	if got["fromMemberId"] != "mgr" || got["toMemberId"] != "rep" || got["teamId"] != "t1" {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
	if got["amount"] != float64(25) {
		t.Fatalf("unexpected amount: %v", got["amount"])
	}
}

func TestClient_PostSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "insufficient balance"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.RemoveCredits(context.Background(), "m1", "t1", 10)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "insufficient balance" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestWebhookNotifier_PostsMemberAndTeam(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	if err := n.MemberRemoved(context.Background(), "m1", "t1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["memberId"] != "m1" || got["teamId"] != "t1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestWebhookNotifier_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	if err := n.MemberRemoved(context.Background(), "m1", "t1"); err == nil {
		t.Fatalf("expected error on 500")
	}
}
