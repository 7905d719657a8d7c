package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"biolink_back/siteconfig"
)

func TestFetchConfigNullData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":null}`))
	}))
	defer server.Close()

	api := NewAPIClient(server.URL)
	data, err := api.FetchConfig(context.Background())
	if err != nil {
		t.Fatalf("FetchConfig: %v", err)
	}
	if data != nil {
		t.Fatalf("data = %s, want nil for a server without data", data)
	}
}

func TestFetchConfigWithData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"username":"alice"}}`))
	}))
	defer server.Close()

	api := NewAPIClient(server.URL)
	data, err := api.FetchConfig(context.Background())
	if err != nil {
		t.Fatalf("FetchConfig: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if doc["username"] != "alice" {
		t.Fatalf("username = %v, want alice", doc["username"])
	}
}

func TestSaveConfigSurfacesServerReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid password"}`))
	}))
	defer server.Close()

	api := NewAPIClient(server.URL)
	err := api.SaveConfig(context.Background(), "wrong", siteconfig.DefaultConfig())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Reason != "invalid password" {
		t.Fatalf("reason = %q, want the server message verbatim", apiErr.Reason)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", apiErr.StatusCode)
	}
}

func TestSaveConfigSubmitsPasswordAndDocument(t *testing.T) {
	var received struct {
		Password string         `json:"password"`
		Config   map[string]any `json:"config"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	cfg := siteconfig.DefaultConfig()
	cfg.Username = "alice"

	api := NewAPIClient(server.URL)
	if err := api.SaveConfig(context.Background(), "hunter2", cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if received.Password != "hunter2" {
		t.Fatalf("password = %q", received.Password)
	}
	if received.Config["username"] != "alice" {
		t.Fatalf("config username = %v", received.Config["username"])
	}
}

func TestViewsRoundTrip(t *testing.T) {
	var total int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			total++
		case http.MethodPut:
			var body struct {
				Views int64 `json:"views"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			total = body.Views
		}
		_ = json.NewEncoder(w).Encode(map[string]int64{"views": total})
	}))
	defer server.Close()

	api := NewAPIClient(server.URL)
	ctx := context.Background()

	if got, err := api.IncrementViews(ctx, "visitor-1"); err != nil || got != 1 {
		t.Fatalf("IncrementViews = (%d, %v), want (1, nil)", got, err)
	}
	if got, err := api.SetViews(ctx, 5); err != nil || got != 5 {
		t.Fatalf("SetViews = (%d, %v), want (5, nil)", got, err)
	}
	if got, err := api.FetchViews(ctx); err != nil || got != 5 {
		t.Fatalf("FetchViews = (%d, %v), want (5, nil)", got, err)
	}
}
