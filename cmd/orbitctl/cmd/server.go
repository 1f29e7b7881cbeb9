package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the saved API server URL",
}

var serverSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Save a server URL override",
	Long: `Saves a server URL that later invocations use when neither the --server
flag nor ` + config.EnvServerURL + ` is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveServerOverride(args[0]); err != nil {
			return err
		}
		fmt.Printf("Server URL saved: %s\n", args[0])
		return nil
	},
}

var serverShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the server URL in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		fmt.Println(cfg.ServerURL)
		return nil
	},
}

var serverClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved server URL override",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearServerOverride(); err != nil {
			return err
		}
		fmt.Println("Server override cleared")
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverSetCmd)
	serverCmd.AddCommand(serverShowCmd)
	serverCmd.AddCommand(serverClearCmd)
}
