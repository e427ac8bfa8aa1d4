package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"teamup/internal/adapters/auth"
	"teamup/internal/domain"
)

var tokenFlags struct {
	userID string
	name   string
	email  string
	admin  bool
	ttl    time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an access token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		if a.cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		token, err := auth.NewJWTIssuer(a.cfg.JWTSecret).Issue(&domain.Principal{
			UserID:  tokenFlags.userID,
			Name:    tokenFlags.name,
			Email:   tokenFlags.email,
			IsAdmin: tokenFlags.admin,
		}, tokenFlags.ttl)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenFlags.userID, "user-id", "", "subject of the token")
	f.StringVar(&tokenFlags.name, "name", "", "display name")
	f.StringVar(&tokenFlags.email, "email", "", "e-mail address used for feedback invitations")
	f.BoolVar(&tokenFlags.admin, "admin", false, "grant the is_admin claim")
	f.DurationVar(&tokenFlags.ttl, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user-id")
}
