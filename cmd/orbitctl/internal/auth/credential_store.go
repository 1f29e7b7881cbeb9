package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ramdasbb/villageorbit/pkg/sdk"
)

const (
	configDirName   = ".villageorbit"
	credentialsFile = "credentials.json"
)

// FileStore implements sdk.TokenStore using a JSON file under the user's
// home directory. All three pieces of session state (access token, refresh
// token, cached user record) live in one file and are cleared together.
//
// Per the TokenStore contract every operation degrades gracefully: read
// failures and malformed content yield empty values, write failures are
// dropped. The CLI treats a missing credentials file as "not logged in",
// never as an error.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// Ensure FileStore implements sdk.TokenStore at compile time.
var _ sdk.TokenStore = (*FileStore)(nil)

// fileCredentials is the on-disk shape.
type fileCredentials struct {
	AccessToken  string          `json:"accessToken,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// NewFileStore creates a FileStore rooted at ~/.villageorbit.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", configDirName, err)
	}
	return &FileStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// NewFileStoreAt creates a FileStore at an explicit path. Used by tests and
// by deployments that relocate the credential file.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() fileCredentials {
	var creds fileCredentials
	data, err := os.ReadFile(s.path)
	if err != nil {
		return creds
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return fileCredentials{}
	}
	return creds
}

func (s *FileStore) save(creds fileCredentials) {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().AccessToken
}

func (s *FileStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().RefreshToken
}

func (s *FileStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.AccessToken = access
	creds.RefreshToken = refresh
	s.save(creds)
}

func (s *FileStore) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	creds.AccessToken = access
	s.save(creds)
}

func (s *FileStore) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.path)
}

func (s *FileStore) SetUser(u *sdk.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	if u == nil {
		creds.User = nil
	} else {
		data, err := json.Marshal(u)
		if err != nil {
			return
		}
		creds.User = data
	}
	s.save(creds)
}

func (s *FileStore) User() *sdk.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds := s.load()
	if len(creds.User) == 0 {
		return nil
	}
	user, err := sdk.DecodeUser(creds.User)
	if err != nil {
		return nil
	}
	return user
}
