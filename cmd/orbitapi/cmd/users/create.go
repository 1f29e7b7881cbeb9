package users

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/bunx"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
	"github.com/spf13/cobra"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	mobileFlag   string
	villageFlag  string
	rolesInput   []string
	approveFlag  bool
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new resident account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		service, db, err := openService()
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		ctx := cmd.Context()
		user, err := service.Signup(ctx, iam.SignupInput{
			FullName:  nameFlag,
			Email:     emailFlag,
			Password:  password,
			Mobile:    mobileFlag,
			VillageID: villageFlag,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if approveFlag {
			if err := service.SetApproval(ctx, user.Email, models.ApprovalApproved); err != nil {
				return fmt.Errorf("approve user: %w", err)
			}
		}

		for _, role := range rolesInput {
			if err := service.AssignRoleByName(ctx, user.ID, strings.TrimSpace(role)); err != nil {
				return fmt.Errorf("assign role %s: %w", role, err)
			}
		}

		fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address (required)")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Full name (required)")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password")
	createCmd.Flags().StringVar(&mobileFlag, "mobile", "", "Mobile number")
	createCmd.Flags().StringVar(&villageFlag, "village", "", "Village identifier")
	createCmd.Flags().StringSliceVar(&rolesInput, "role", nil, "Additional role to assign (repeatable)")
	createCmd.Flags().BoolVar(&approveFlag, "approve", false, "Approve the account immediately")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin")

	UsersCmd.AddCommand(createCmd)
}
