package cmd

import (
	"fmt"
	"os"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/cmd/users"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/config"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "orbitapi",
	Short: "Village Orbit API server",
	Long: `Village Orbit API server provides the backend for the village portal.
It exposes the authentication endpoints used by the portal clients and
manages resident accounts, roles, and refresh tokens.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		users.SetConfig(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
