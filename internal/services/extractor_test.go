package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imovelscan/leilao-api/internal/models"
)

func TestTriggerImmediateResponse(t *testing.T) {
	var received models.ExtractionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("workflow endpoint received %s, expected POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, expected application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode trigger body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"propertyType":"Apartamento","minBid":"24500000"}`))
	}))
	defer server.Close()

	client := NewExtractionClient(server.URL, "http://localhost/extraction-callback", 5*time.Second, testLogger())

	result, err := client.Trigger(context.Background(), "https://www.leilao.com.br/imovel/1")
	if err != nil {
		t.Fatalf("Trigger() error: %v", err)
	}
	if result.Deferred {
		t.Error("Trigger() reported deferred for an immediate payload")
	}
	if result.Raw == nil {
		t.Fatal("Trigger() returned nil payload for an immediate response")
	}

	if received.URL != "https://www.leilao.com.br/imovel/1" {
		t.Errorf("trigger body url = %q", received.URL)
	}
	if received.CallbackURL != "http://localhost/extraction-callback" {
		t.Errorf("trigger body callbackUrl = %q", received.CallbackURL)
	}
	if _, err := time.Parse(time.RFC3339, received.Timestamp); err != nil {
		t.Errorf("trigger body timestamp %q is not RFC3339: %v", received.Timestamp, err)
	}
}

func TestTriggerDeferredSentinel(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		deferred bool
	}{
		{"exact sentinel", `{"message":"Workflow was started"}`, true},
		{"different message is data", `{"message":"Workflow has started"}`, false},
		{"payload with no message", `{"propertyType":"Casa"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewExtractionClient(server.URL, "http://localhost/cb", 5*time.Second, testLogger())
			result, err := client.Trigger(context.Background(), "https://x.com.br/1")
			if err != nil {
				t.Fatalf("Trigger() error: %v", err)
			}
			if result.Deferred != tt.deferred {
				t.Errorf("Deferred = %v, expected %v", result.Deferred, tt.deferred)
			}
		})
	}
}

func TestTriggerHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewExtractionClient(server.URL, "http://localhost/cb", 5*time.Second, testLogger())
	_, err := client.Trigger(context.Background(), "https://x.com.br/1")

	var httpErr *models.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Trigger() error = %v, expected *models.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, expected 502", httpErr.StatusCode)
	}
}

func TestTriggerProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewExtractionClient(server.URL, "http://localhost/cb", 5*time.Second, testLogger())
	_, err := client.Trigger(context.Background(), "https://x.com.br/1")

	var protocolErr *models.ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Errorf("Trigger() error = %v, expected *models.ProtocolError", err)
	}
}

func TestTriggerNetworkError(t *testing.T) {
	// A closed server makes the transport fail.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewExtractionClient(server.URL, "http://localhost/cb", time.Second, testLogger())
	_, err := client.Trigger(context.Background(), "https://x.com.br/1")

	var netErr *models.NetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("Trigger() error = %v, expected *models.NetworkError", err)
	}
}

func TestTriggerTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewExtractionClient(server.URL, "http://localhost/cb", 20*time.Millisecond, testLogger())
	_, err := client.Trigger(context.Background(), "https://x.com.br/1")

	var timeoutErr *models.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("Trigger() error = %v, expected *models.TimeoutError", err)
	}
}
