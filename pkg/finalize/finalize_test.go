package finalize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 14, 7, 9, 123_456_789, time.FixedZone("CET", 3600))
}

func TestFinalizeSendsRequest(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "cardstack/") {
			t.Errorf("User-Agent = %q", ua)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"algorithm":"class CircuitEncryption: ...","analysis":{"num_cards":1}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithClock(fixedClock))
	if err != nil {
		t.Fatal(err)
	}
	cards := []circuit.Card{{ID: "a-1", Variant: circuit.VariantLogic, Height: 0.2}}

	resp, err := c.Do(context.Background(), cards)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.Algorithm != "class CircuitEncryption: ..." {
		t.Errorf("Algorithm = %q", resp.Algorithm)
	}
	if !strings.Contains(string(resp.Analysis), "num_cards") {
		t.Errorf("Analysis = %s", resp.Analysis)
	}
	if got.Timestamp != "2024-03-05T13:07:09.123Z" {
		t.Errorf("Timestamp = %q", got.Timestamp)
	}
	if len(got.Cards) != 1 || got.Cards[0].ID != "a-1" {
		t.Errorf("Cards = %+v", got.Cards)
	}
}

func TestFinalizeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	alg, err := c.Finalize(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeRemoteStatus) {
		t.Fatalf("Finalize() error = %v, want REMOTE_STATUS", err)
	}
	if got := Display(alg, err); got != "Error: API responded with status: 500" {
		t.Errorf("Display() = %q", got)
	}
}

func TestFinalizeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, _ := NewClient(url)
	_, err := c.Finalize(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("Finalize() error = %v, want NETWORK_ERROR", err)
	}
	if got := Display("", err); !strings.HasPrefix(got, "Error: ") {
		t.Errorf("Display() = %q", got)
	}
}

func TestFinalizeBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, err := c.Finalize(context.Background(), nil)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Finalize() error = %v, want INVALID_FORMAT", err)
	}
}

func TestFinalizeDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	_, _ = c.Finalize(context.Background(), nil)
	if calls != 1 {
		t.Errorf("server saw %d requests, want 1", calls)
	}
}

func TestNewClientRejectsBadEndpoint(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Error("NewClient should reject non-http endpoints")
	}
}

func TestDisplaySuccess(t *testing.T) {
	if got := Display("algo", nil); got != "algo" {
		t.Errorf("Display() = %q", got)
	}
}
