package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/bunx"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/migrations"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/repository"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

type testServer struct {
	*httptest.Server
	service *iam.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bunx.Close(db) })

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	ctx := context.Background()
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer("test-secret", 15*time.Minute)
	require.NoError(t, err)

	service := iam.NewService(iam.Dependencies{
		Users:  repository.NewBunUserRepository(db),
		Roles:  repository.NewBunRoleRepository(db),
		Tokens: repository.NewBunRefreshTokenRepository(db),
		Issuer: issuer,
	}, iam.Config{
		RefreshTTL:   30 * 24 * time.Hour,
		RotateWindow: 7 * 24 * time.Hour,
	})

	router := NewRouter(RouterOptions{
		IAMService: service,
		Issuer:     issuer,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, service: service}
}

type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, wireEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env wireEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (ts *testServer) signup(t *testing.T, email string) {
	t.Helper()
	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"fullName": "Asha Patil",
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)
}

func (ts *testServer) login(t *testing.T, email string) loginResponse {
	t.Helper()
	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var out loginResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")

	out := ts.login(t, "asha@village.in")
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)

	require.NotNil(t, out.User)
	assert.Equal(t, "asha@village.in", out.User.Email)
	assert.Equal(t, "PENDING", out.User.ApprovalStatus)
	require.Len(t, out.User.Roles, 1)
	assert.Equal(t, "resident", out.User.Roles[0].Name)
	assert.Contains(t, out.User.AllPermissions, "complaints:create")
	assert.Contains(t, out.User.AllPermissions, "notices:view")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"fullName": "Other Person",
		"email":    "asha@village.in",
		"password": "different",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMAIL_TAKEN", env.Error.Code)
}

func TestSignup_InvalidBody(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"fullName": "Asha",
		"email":    "not-an-email",
		"password": "pass",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "asha@village.in",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestLogin_RejectedAccount(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")
	require.NoError(t, ts.service.SetApproval(context.Background(), "asha@village.in", "REJECTED"))

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "asha@village.in",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACCOUNT_REJECTED", env.Error.Code)
}

func TestRefreshToken(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")
	out := ts.login(t, "asha@village.in")

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": out.RefreshToken,
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var refreshed refreshResponse
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
	// Fresh token, not rotated yet
	assert.Empty(t, refreshed.RefreshToken)
}

func TestRefreshToken_Invalid(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": "never-issued",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")
	out := ts.login(t, "asha@village.in")

	status, env := ts.do(t, http.MethodGet, "/api/v1/auth/me", out.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var profile iam.Profile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "asha@village.in", profile.Email)
	assert.Equal(t, "Asha Patil", profile.FullName)
}

func TestMe_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		status, env := ts.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status, fmt.Sprintf("token %q", token))
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	}
}

func TestLogout_RevokesBothTokens(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "asha@village.in")
	out := ts.login(t, "asha@village.in")

	status, env := ts.do(t, http.MethodPost, "/api/v1/auth/logout", out.AccessToken, map[string]string{
		"refreshToken": out.RefreshToken,
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	// The refresh token can no longer be redeemed
	status, _ = ts.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": out.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// The access token's JTI is denylisted for its remaining lifetime
	status, _ = ts.do(t, http.MethodGet, "/api/v1/auth/me", out.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
