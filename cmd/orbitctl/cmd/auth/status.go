package auth

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
	"github.com/ramdasbb/villageorbit/pkg/sdk"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		session, err := cfg.Provider.Session()
		if err != nil {
			return err
		}

		store := session.Client().Store()
		if !sdk.HasTokens(store) {
			return fmt.Errorf("not logged in")
		}

		pterm.DefaultSection.Println("Authentication Status")
		if sdk.IsTokenExpired(store.AccessToken()) {
			pterm.Info.Println("Access token expired; it will be refreshed on the next request.")
		} else {
			pterm.Info.Println("Access token valid.")
		}

		if err := session.Bootstrap(cmd.Context()); err != nil {
			return fmt.Errorf("session is no longer valid: %s", err)
		}
		user := session.User()

		pterm.Info.Printf("Logged in as: %s <%s>\n", user.FullName, user.Email)
		pterm.Info.Printf("Approval status: %s\n", user.ApprovalStatus)

		pterm.DefaultSection.Println("Roles and Permissions")
		roleNames := make([]string, 0, len(user.Roles))
		for _, r := range user.Roles {
			roleNames = append(roleNames, r.Name)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROLES\tPERMISSIONS")
		fmt.Fprintf(w, "%s\t%s\n",
			strings.Join(roleNames, ", "),
			strings.Join(user.AllPermissions, ", "),
		)
		w.Flush()

		return nil
	},
}
