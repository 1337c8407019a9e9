package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/imovelscan/leilao-api/internal/models"
)

func TestPollExhaustsAttemptBudget(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	poller := NewPollingCoordinator(server.URL, time.Millisecond, 5, testLogger())

	_, err := poller.Poll(context.Background(), "https://x.com.br/1")

	var timeoutErr *models.PollingTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Poll() error = %v, expected *models.PollingTimeoutError", err)
	}
	if timeoutErr.Attempts != 5 {
		t.Errorf("PollingTimeoutError.Attempts = %d, expected 5", timeoutErr.Attempts)
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("callback store saw %d requests, expected exactly 5", got)
	}
	if poller.State() != StateExhausted {
		t.Errorf("State() = %v, expected exhausted", poller.State())
	}
	if poller.Attempts() != 5 {
		t.Errorf("Attempts() = %d, expected 5", poller.Attempts())
	}
}

func TestPollSucceedsOnLaterTick(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 4 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"propertyType":"Casa"}`))
	}))
	defer server.Close()

	poller := NewPollingCoordinator(server.URL, time.Millisecond, 10, testLogger())

	data, err := poller.Poll(context.Background(), "https://x.com.br/1")
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if string(data) != `{"propertyType":"Casa"}` {
		t.Errorf("Poll() returned %q", data)
	}
	if poller.Attempts() != 4 {
		t.Errorf("Attempts() = %d, expected success on the 4th tick", poller.Attempts())
	}
	if poller.State() != StateSucceeded {
		t.Errorf("State() = %v, expected succeeded", poller.State())
	}
}

func TestPollPassesTargetURLAsQueryParam(t *testing.T) {
	target := "https://www.leilao.com.br/imovel/1?lote=2"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != target {
			t.Errorf("url query param = %q, expected %q", got, target)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	poller := NewPollingCoordinator(server.URL, time.Millisecond, 1, testLogger())
	if _, err := poller.Poll(context.Background(), target); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
}

func TestPollIgnoresNonJSONResponses(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch hits.Add(1) {
		case 1:
			// 200 but wrong content type: not ready.
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>aguarde</html>"))
		case 2:
			// Claims JSON but the body is not valid: not ready.
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("{broken"))
		default:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	poller := NewPollingCoordinator(server.URL, time.Millisecond, 5, testLogger())

	data, err := poller.Poll(context.Background(), "https://x.com.br/1")
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("Poll() returned %q", data)
	}
	if poller.Attempts() != 3 {
		t.Errorf("Attempts() = %d, expected the first two ticks to count as misses", poller.Attempts())
	}
}

func TestPollSurvivesTransportFailures(t *testing.T) {
	// Point the first coordinator at a dead server so every tick fails at the
	// transport level; the run must still end with the budget error, not a
	// transport error.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	poller := NewPollingCoordinator(dead.URL, time.Millisecond, 3, testLogger())

	_, err := poller.Poll(context.Background(), "https://x.com.br/1")

	var timeoutErr *models.PollingTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Errorf("Poll() error = %v, expected *models.PollingTimeoutError", err)
	}
	if poller.Attempts() != 3 {
		t.Errorf("Attempts() = %d, expected every failed tick to consume budget", poller.Attempts())
	}
}

func TestPollCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())

	poller := NewPollingCoordinator(server.URL, time.Hour, 10, testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := poller.Poll(ctx, "https://x.com.br/1")
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Poll() error = %v, expected context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Poll() did not return after cancellation")
	}

	if poller.State() != StateCancelled {
		t.Errorf("State() = %v, expected cancelled", poller.State())
	}
}
