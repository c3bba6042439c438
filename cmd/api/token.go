package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenSubject    string
	tokenAdmin      bool
	tokenEmployeeID string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for an operator or employee",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var employeeID *string
		if tokenEmployeeID != "" {
			employeeID = &tokenEmployeeID
		}

		token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
			GenerateAccessToken(tokenSubject, tokenAdmin, employeeID)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).In(cfg.Location()).Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant admin routes")
	tokenCmd.Flags().StringVar(&tokenEmployeeID, "employee-id", "", "employee the token acts for")
	_ = tokenCmd.MarkFlagRequired("subject")
}
