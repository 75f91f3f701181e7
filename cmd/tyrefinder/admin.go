package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Print a signed token for the /admin routes",
	Long: `Signs a token with admin.secret. Send it as the tf-admin cookie or as
"Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := adminAuth().NewToken(subject, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	adminTokenCmd.Flags().String("subject", "admin", "Token subject")
	adminTokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
