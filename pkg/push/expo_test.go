package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendBatches(t *testing.T) {
	var requests int
	var sizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var batch []Message
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		sizes = append(sizes, len(batch))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv("EXPO_PUSH_URL", server.URL)
	t.Setenv("EXPO_ACCESS_TOKEN", "")
	client := NewClient()

	messages := make([]Message, 0, 250)
	for i := 0; i < 250; i++ {
		messages = append(messages, Message{
			To:    fmt.Sprintf("ExponentPushToken[%d]", i),
			Title: "Birthday today",
			Body:  "Alice turns 35 today.",
		})
	}

	if err := client.Send(context.Background(), messages); err != nil {
		t.Fatalf("send: %v", err)
	}

	if requests != 3 {
		t.Fatalf("requests = %d, want 3", requests)
	}
	if sizes[0] != 100 || sizes[1] != 100 || sizes[2] != 50 {
		t.Fatalf("batch sizes = %v, want [100 100 50]", sizes)
	}
}

func TestSendAccessToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv("EXPO_PUSH_URL", server.URL)
	t.Setenv("EXPO_ACCESS_TOKEN", "sekrit")
	client := NewClient()

	if err := client.Send(context.Background(), []Message{{To: "ExponentPushToken[x]"}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer sekrit" {
		t.Fatalf("authorization = %q, want bearer token", auth)
	}
}

func TestSendGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"code":"PUSH_TOO_MANY_REQUESTS"}]}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	t.Setenv("EXPO_PUSH_URL", server.URL)
	t.Setenv("EXPO_ACCESS_TOKEN", "")
	client := NewClient()

	if err := client.Send(context.Background(), []Message{{To: "ExponentPushToken[x]"}}); err == nil {
		t.Fatal("expected gateway error to surface")
	}
}

func TestSendNothing(t *testing.T) {
	// No messages, no requests.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer server.Close()

	t.Setenv("EXPO_PUSH_URL", server.URL)
	t.Setenv("EXPO_ACCESS_TOKEN", "")
	client := NewClient()

	if err := client.Send(context.Background(), nil); err != nil {
		t.Fatalf("send: %v", err)
	}
}
