package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with VillageOrbit",
	Long: `Logs in with email and password and stores the session credentials under
~/.villageorbit. Missing credentials are prompted for unless running
non-interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		email := loginEmail
		password := loginPassword
		if email == "" {
			if cfg.NonInteractive {
				return fmt.Errorf("--email is required in non-interactive mode")
			}
			var err error
			email, err = pterm.DefaultInteractiveTextInput.Show("Email")
			if err != nil {
				return err
			}
		}
		if password == "" {
			if cfg.NonInteractive {
				return fmt.Errorf("--password is required in non-interactive mode")
			}
			var err error
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return err
			}
		}

		session, err := cfg.Provider.Session()
		if err != nil {
			return err
		}
		if err := session.Login(cmd.Context(), email, password); err != nil {
			return fmt.Errorf("login failed: %s", err)
		}

		user := session.User()
		pterm.Success.Printf("Logged in as %s (%s)\n", user.FullName, user.Email)
		if !session.IsApproved() {
			pterm.Warning.Println("Your account is awaiting approval; some features are unavailable until an administrator approves it.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
}
