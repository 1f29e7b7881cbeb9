package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/cmd/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/client"
	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
)

var (
	serverURL      string
	villageID      string
	nonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:   "orbitctl",
	Short: "VillageOrbit CLI - village portal client",
	Long: `orbitctl is the command-line interface for VillageOrbit, a village portal
backed by a REST API. Use it to register, log in, and inspect your session,
roles, and permissions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if os.Getenv("ORBIT_NON_INTERACTIVE") == "1" {
			nonInteractive = true
		}

		resolved := config.ResolveServerURL(serverURL)
		cfg := &config.GlobalConfig{
			ServerURL:      resolved,
			NonInteractive: nonInteractive,
			Provider:       client.NewProvider(resolved, villageID),
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "VillageOrbit API server URL (default: VILLAGEORBIT_API_URL, saved override, or "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&villageID, "village", "", "Village scope for all requests")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Disable interactive prompts (also set via ORBIT_NON_INTERACTIVE=1)")
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(serverCmd)
}
