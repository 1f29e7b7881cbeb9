package sdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestTransport(serverURL string, store TokenStore) *Transport {
	return &Transport{
		baseURL: serverURL,
		http:    &http.Client{},
		store:   store,
		timeout: 5 * time.Second,
	}
}

func TestTransportAttachesBearerHeader(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.SetTokens("tok-1", "ref-1")
	tr := newTestTransport(srv.URL, store)

	env := tr.Do(context.Background(), http.MethodGet, "/auth/me", nil, RequestOptions{})
	if !env.Success {
		t.Fatalf("expected success, got %+v", env)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
}

func TestTransportPublicRequestCarriesNoBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	store := NewMemoryStore()
	store.SetTokens("tok-1", "ref-1")
	tr := newTestTransport(srv.URL, store)

	tr.Do(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.com"}, RequestOptions{Public: true})
	if gotAuth != "" {
		t.Fatalf("public request must not carry credentials, got %q", gotAuth)
	}
}

func TestTransportMissingTokenIsNotAnError(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, NewMemoryStore())
	env := tr.Do(context.Background(), http.MethodGet, "/items", nil, RequestOptions{})
	if !env.Success {
		t.Fatalf("absent token should not fail at the transport layer: %+v", env)
	}
	if gotAuth != "" {
		t.Fatalf("no token stored, no header expected, got %q", gotAuth)
	}
}

func TestTransportVillageScopeHeader(t *testing.T) {
	var gotScope string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotScope = r.Header.Get("X-Village-Id")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, NewMemoryStore())
	tr.villageID = "vlg-default"

	tr.Do(context.Background(), http.MethodGet, "/announcements", nil, RequestOptions{})
	if gotScope != "vlg-default" {
		t.Fatalf("expected client-level village scope, got %q", gotScope)
	}

	tr.Do(context.Background(), http.MethodGet, "/announcements", nil, RequestOptions{VillageID: "vlg-42"})
	if gotScope != "vlg-42" {
		t.Fatalf("request-level scope should win, got %q", gotScope)
	}
}

func TestTransportNetworkFailureBecomesEnvelope(t *testing.T) {
	// Port 1 is never listening.
	tr := newTestTransport("http://127.0.0.1:1", NewMemoryStore())

	env := tr.Do(context.Background(), http.MethodGet, "/auth/me", nil, RequestOptions{})
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if env.Error == nil || env.Error.Code != CodeNetworkError {
		t.Fatalf("expected NETWORK_ERROR, got %+v", env.Error)
	}
	if env.StatusCode() != 0 {
		t.Fatalf("no response was received, status should be zero, got %d", env.StatusCode())
	}
}

func TestTransportUnparseableBodyBecomesParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>maintenance page</html>"))
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, NewMemoryStore())
	env := tr.Do(context.Background(), http.MethodGet, "/auth/me", nil, RequestOptions{})
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if env.Error == nil || env.Error.Code != CodeParseError {
		t.Fatalf("expected PARSE_ERROR, got %+v", env.Error)
	}
	if env.StatusCode() != http.StatusOK {
		t.Fatalf("status should carry through on parse errors, got %d", env.StatusCode())
	}
}

func TestEnvelopeCoercesStringError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": false, "error": "email already registered"}`))
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, NewMemoryStore())
	env := tr.Do(context.Background(), http.MethodPost, "/auth/signup", map[string]string{}, RequestOptions{Public: true})
	if env.Success {
		t.Fatal("expected failure envelope")
	}
	if env.ErrorMessage() != "email already registered" {
		t.Fatalf("string error shape should coerce to message, got %q", env.ErrorMessage())
	}
}

func TestTransportHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, NewMemoryStore())
	tr.timeout = 50 * time.Millisecond

	start := time.Now()
	env := tr.Do(context.Background(), http.MethodGet, "/slow", nil, RequestOptions{})
	if env.Success {
		t.Fatal("expected timeout failure")
	}
	if env.Error == nil || env.Error.Code != CodeNetworkError {
		t.Fatalf("timeouts surface as NETWORK_ERROR, got %+v", env.Error)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("request was not bounded by the configured timeout (%s)", elapsed)
	}
}
