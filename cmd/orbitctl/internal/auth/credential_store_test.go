package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ramdasbb/villageorbit/pkg/sdk"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStoreAt(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := tempStore(t)
	store.SetTokens("a1", "r1")

	if store.AccessToken() != "a1" || store.RefreshToken() != "r1" {
		t.Fatalf("round trip failed: %q / %q", store.AccessToken(), store.RefreshToken())
	}

	store.SetAccessToken("a2")
	if store.AccessToken() != "a2" {
		t.Fatalf("expected a2, got %q", store.AccessToken())
	}
	if store.RefreshToken() != "r1" {
		t.Fatal("SetAccessToken must not touch the refresh token")
	}
}

func TestFileStoreClearRemovesEverything(t *testing.T) {
	store := tempStore(t)
	store.SetTokens("a1", "r1")
	store.SetUser(&sdk.User{ID: "u1", Email: "a@b.com"})

	store.ClearTokens()

	if sdk.HasTokens(store) {
		t.Fatal("expected no tokens after clear")
	}
	if store.User() != nil {
		t.Fatal("user record must be cleared with the tokens")
	}
	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Fatal("credentials file should be removed")
	}
}

func TestFileStoreMissingFileIsEmptyNotError(t *testing.T) {
	store := tempStore(t)

	if store.AccessToken() != "" || store.RefreshToken() != "" || store.User() != nil {
		t.Fatal("missing file must read as empty")
	}
}

func TestFileStoreSwallowsMalformedContent(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if store.AccessToken() != "" {
		t.Fatal("malformed file must read as empty")
	}
	if store.User() != nil {
		t.Fatal("malformed user data must read as nil")
	}

	// Writes still work after corruption.
	store.SetTokens("a1", "r1")
	if store.AccessToken() != "a1" {
		t.Fatal("store should recover by rewriting the file")
	}
}

func TestFileStoreUserRoundTrip(t *testing.T) {
	store := tempStore(t)
	store.SetUser(&sdk.User{
		ID:             "u1",
		Email:          "asha@village.in",
		FullName:       "Asha Patil",
		ApprovalStatus: sdk.ApprovalApproved,
		Roles:          []sdk.Role{{ID: "r1", Name: "Admin"}},
		AllPermissions: []string{"items:create"},
	})

	u := store.User()
	if u == nil || u.ID != "u1" || !u.HasRole("admin") {
		t.Fatalf("user round trip failed: %+v", u)
	}
}
