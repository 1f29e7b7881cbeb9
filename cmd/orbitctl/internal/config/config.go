package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/client"
)

type contextKey string

const configKey contextKey = "orbitctl-config"

const (
	// EnvServerURL overrides every other server URL source when set.
	EnvServerURL = "VILLAGEORBIT_API_URL"

	// DefaultServerURL is the fallback origin when nothing else is
	// configured.
	DefaultServerURL = "http://localhost:8080"

	configDirName      = ".villageorbit"
	serverOverrideFile = "server"
)

// GlobalConfig holds shared configuration for all orbitctl commands,
// injected into the cobra command context by the root command's
// PersistentPreRun hook.
type GlobalConfig struct {
	ServerURL      string
	NonInteractive bool
	Provider       *client.Provider
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics. Only for use in
// RunE functions that run under the root command's PersistentPreRun.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("orbitctl: config not found in context - this is a bug in orbitctl")
	}
	return cfg
}

// ResolveServerURL picks the API base URL with the precedence
// flag > environment > saved override > default.
func ResolveServerURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvServerURL); env != "" {
		return env
	}
	if saved := loadServerOverride(); saved != "" {
		return saved
	}
	return DefaultServerURL
}

// SaveServerOverride persists an admin-set server URL so later invocations
// pick it up without a flag or environment variable.
func SaveServerOverride(url string) error {
	path, err := serverOverridePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(url+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save server override: %w", err)
	}
	return nil
}

// ClearServerOverride removes a saved server URL.
func ClearServerOverride() error {
	path, err := serverOverridePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear server override: %w", err)
	}
	return nil
}

func loadServerOverride() string {
	path, err := serverOverridePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func serverOverridePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, configDirName, serverOverrideFile), nil
}
