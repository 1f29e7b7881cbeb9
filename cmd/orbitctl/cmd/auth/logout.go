package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from VillageOrbit",
	Long: `Revokes the session server-side when reachable and removes the stored
credentials either way.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		session, err := cfg.Provider.Session()
		if err != nil {
			return err
		}

		session.Logout(cmd.Context())
		fmt.Println("Logged out successfully")
		return nil
	},
}
