package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/security"
	"github.com/spf13/cobra"
)

// newTokenCmd mints an access token for an existing user, for local testing
// against the authenticated API
func newTokenCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := issueToken(cmd.Context(), a.cfg.Auth, a.store, userID)
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id to issue the token for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func issueToken(ctx context.Context, cfg config.AuthConfig, users domain.UserRepository, userID int64) (string, error) {
	if cfg.JWTSecret == "" {
		return "", errors.New("auth.jwt_secret is required")
	}

	user, err := users.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user %d not found", userID)
	}

	return security.NewJWTManager(cfg.JWTSecret, cfg.Issuer, cfg.AccessTokenTTL).GenerateAccessToken(user)
}
