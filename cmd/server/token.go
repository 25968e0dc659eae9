package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "vouch/internal/jwt_token"
	"vouch/internal/platform/config"
	"vouch/pkg/domain"
)

// newTokenCommand mints a bearer token for a wallet key, for operators and
// local development against a server sharing the same signing key.
func newTokenCommand(configFile *string) *cobra.Command {
	var (
		caller string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a base58 public key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			key, err := domain.ParsePublicKey(caller)
			if err != nil {
				return err
			}
			token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).GenerateAccessToken(key, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&caller, "caller", "", "base58 public key to authenticate as")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("caller")
	return cmd
}
