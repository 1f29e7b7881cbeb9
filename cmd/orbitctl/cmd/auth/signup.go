package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ramdasbb/villageorbit/cmd/orbitctl/internal/config"
	"github.com/ramdasbb/villageorbit/pkg/sdk"
)

var signupInput sdk.SignupInput

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new VillageOrbit account",
	Long: `Registers a new account. Accounts start in the pending state and must be
approved by an administrator before approved-only features unlock; signing
up does not log you in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		if signupInput.FullName == "" || signupInput.Email == "" || signupInput.Password == "" {
			return fmt.Errorf("--name, --email and --password are required")
		}

		session, err := cfg.Provider.Session()
		if err != nil {
			return err
		}
		message, err := session.Signup(cmd.Context(), signupInput)
		if err != nil {
			return fmt.Errorf("signup failed: %s", err)
		}

		if message == "" {
			message = "Registration received. Your account is pending approval."
		}
		pterm.Success.Println(message)
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupInput.FullName, "name", "", "Full name")
	signupCmd.Flags().StringVar(&signupInput.Email, "email", "", "Email address")
	signupCmd.Flags().StringVar(&signupInput.Password, "password", "", "Password")
	signupCmd.Flags().StringVar(&signupInput.Mobile, "mobile", "", "Mobile number")
	signupCmd.Flags().StringVar(&signupInput.AadharNumber, "aadhar", "", "Aadhar number")
	signupCmd.Flags().StringVar(&signupInput.VillageID, "village", "", "Home village")
}
