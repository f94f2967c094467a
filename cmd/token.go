package cmd

import (
	"fmt"
	"time"

	"github.com/Eursukkul/event-registration/internal/middleware"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local development",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetUint("user")
		role, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if userID == 0 {
			return fmt.Errorf("--user must be a positive id")
		}
		if role != middleware.RoleAdmin && role != middleware.RoleEmployee {
			return fmt.Errorf("--role must be %q or %q", middleware.RoleAdmin, middleware.RoleEmployee)
		}

		token, err := middleware.IssueToken([]byte(cfg.JWTSecret), userID, role, ttl, time.Now())
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Uint("user", 0, "user id placed in the subject claim")
	tokenCmd.Flags().String("role", middleware.RoleEmployee, "role claim (admin or employee)")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
