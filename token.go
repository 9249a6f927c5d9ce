package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"maintenance-cloud/internal/auth"
	"maintenance-cloud/internal/config"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject, used as the default complaint reporter")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleViewer), "viewer, operator or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("subject")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token signed with the configured secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is not configured")
		}
		role, ok := auth.NormalizeRole(tokenRole)
		if !ok {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		token, err := auth.IssueJWT([]byte(cfg.Auth.JWTSecret), tokenSubject, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
