package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		session, err := cfg.Provider.Session()
		if err != nil {
			return err
		}

		if err := session.Bootstrap(cmd.Context()); err != nil {
			return fmt.Errorf("not logged in: %s", err)
		}
		user := session.User()
		if user == nil {
			return fmt.Errorf("not logged in")
		}

		fmt.Printf("%s <%s>\n", user.FullName, user.Email)
		if len(user.Roles) > 0 {
			names := make([]string, 0, len(user.Roles))
			for _, r := range user.Roles {
				names = append(names, r.Name)
			}
			fmt.Printf("Roles: %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("Approval: %s\n", user.ApprovalStatus)
		return nil
	},
}
