package users

import (
	"fmt"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/bunx"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/models"
	"github.com/spf13/cobra"
)

var rejectFlag bool

var approveCmd = &cobra.Command{
	Use:   "approve <email>",
	Short: "Approve or reject a pending account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, db, err := openService()
		if err != nil {
			return err
		}
		defer bunx.Close(db)

		status := models.ApprovalApproved
		if rejectFlag {
			status = models.ApprovalRejected
		}

		if err := service.SetApproval(cmd.Context(), args[0], status); err != nil {
			return fmt.Errorf("update approval: %w", err)
		}

		fmt.Printf("User %s is now %s\n", args[0], status)
		return nil
	},
}

func init() {
	approveCmd.Flags().BoolVar(&rejectFlag, "reject", false, "Reject the account instead of approving it")

	UsersCmd.AddCommand(approveCmd)
}
