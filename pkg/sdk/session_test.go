package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSessionHappyLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.com" || body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, failure("INVALID_CREDENTIALS", "wrong email or password"))
			return
		}
		writeJSON(w, http.StatusOK, envelope(map[string]any{
			"accessToken":  "AT1",
			"refreshToken": "RT1",
			"user": map[string]any{
				"userId":         "u1",
				"email":          "a@b.com",
				"fullName":       "Asha Patil",
				"approvalStatus": "APPROVED",
				"roles":          []map[string]string{{"id": "r1", "name": "Admin"}},
				"allPermissions": []string{"items:create"},
			},
		}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(NewClient(srv.URL))
	if err := session.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	store := session.Client().Store()
	if store.AccessToken() != "AT1" || store.RefreshToken() != "RT1" {
		t.Fatalf("tokens not persisted: access=%q refresh=%q", store.AccessToken(), store.RefreshToken())
	}
	if !session.IsAuthenticated() {
		t.Fatal("expected authenticated session")
	}
	if !session.HasRole("admin") || !session.HasPermission("items:create") || !session.IsApproved() {
		t.Fatal("derived facts not computed from the user record")
	}
}

func TestSessionFailedLoginLeavesStateUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, failure("INVALID_CREDENTIALS", "wrong email or password"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Store().SetTokens("keep-access", "keep-refresh")
	session := NewSession(client)

	err := session.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Message != "wrong email or password" {
		t.Fatalf("expected the server message to surface, got %v", err)
	}
	if client.Store().AccessToken() != "keep-access" {
		t.Fatal("failed login must not mutate stored tokens")
	}
}

func TestSignupStoresNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Registration received. Your account is pending approval.",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := NewSession(NewClient(srv.URL))
	msg, err := session.Signup(context.Background(), SignupInput{
		FullName: "Ravi Kumar",
		Email:    "ravi@village.in",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if msg == "" {
		t.Fatal("expected confirmation message")
	}
	if HasTokens(session.Client().Store()) {
		t.Fatal("signup must not establish a session")
	}
	if session.IsAuthenticated() {
		t.Fatal("signup must not authenticate")
	}
}

func TestLogoutClearsEvenWhenServerUnreachable(t *testing.T) {
	// Server is closed before logout, so the revoke call fails on the wire.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(srv.URL)
	srv.Close()

	client.Store().SetTokens("a", "r")
	client.Store().SetUser(&User{ID: "u1"})
	session := NewSession(client)

	session.Logout(context.Background())

	if HasTokens(client.Store()) || client.Store().User() != nil {
		t.Fatal("logout must clear local state regardless of the revoke call")
	}
	if session.IsAuthenticated() {
		t.Fatal("session must not remain authenticated after logout")
	}
}

func TestBootstrapRecoversExpiredSession(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, envelope(map[string]string{"accessToken": "fresh"}))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != "fresh" {
			writeJSON(w, http.StatusUnauthorized, failure("TOKEN_EXPIRED", "access token expired"))
			return
		}
		writeJSON(w, http.StatusOK, envelope(map[string]any{
			"userId": "u1", "email": "a@b.com", "approvalStatus": "APPROVED",
		}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Store().SetTokens("stale", "refresh-1")
	session := NewSession(client)

	// The caller never observes the intermediate 401.
	if err := session.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap should recover via refresh: %v", err)
	}
	if atomic.LoadInt32(&refreshCalls) != 1 {
		t.Fatalf("expected one silent refresh, got %d", refreshCalls)
	}
	if u := session.User(); u == nil || u.ID != "u1" {
		t.Fatalf("expected populated user, got %+v", session.User())
	}
	if !session.IsAuthenticated() {
		t.Fatal("recovered session should be authenticated")
	}
}

func TestBootstrapClearsUnrecoverableSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, failure("INVALID_REFRESH_TOKEN", "revoked"))
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, failure("TOKEN_EXPIRED", "expired"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Store().SetTokens("stale", "dead")
	session := NewSession(client)

	if err := session.Bootstrap(context.Background()); err == nil {
		t.Fatal("expected bootstrap failure")
	}
	if HasTokens(client.Store()) {
		t.Fatal("stale tokens with no confirmed user must be cleared")
	}
}

func TestBootstrapWithoutTokensIsNoop(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	session := NewSession(NewClient(srv.URL))
	if err := session.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap without tokens should be a no-op: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("no network traffic expected without tokens")
	}
}

func TestRefreshUserUpdatesCachedRecord(t *testing.T) {
	approval := "PENDING"
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope(map[string]any{
			"userId": "u1", "email": "a@b.com", "approvalStatus": approval,
		}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.Store().SetTokens("a", "r")
	session := NewSession(client)

	if err := session.RefreshUser(context.Background()); err != nil {
		t.Fatalf("refresh user: %v", err)
	}
	if session.IsApproved() {
		t.Fatal("expected pending user")
	}

	approval = "APPROVED"
	if err := session.RefreshUser(context.Background()); err != nil {
		t.Fatalf("refresh user: %v", err)
	}
	if !session.IsApproved() {
		t.Fatal("approval change should be reflected after RefreshUser")
	}
}
