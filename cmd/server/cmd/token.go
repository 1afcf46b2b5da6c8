package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ratiba-events/server/internal/auth"
)

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint an organizer JWT",
		Long: `Mint a signed JWT for the organizer endpoints using the configured
JWT_SECRET, JWT_ISSUER and JWT_EXPIRY_HOURS.

Examples:
  ratiba token host@example.com
  ratiba token ops@example.com --role admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized := auth.NormalizeRole(role)
			if !strings.EqualFold(strings.TrimSpace(role), string(normalized)) {
				return fmt.Errorf("unknown role %q (use admin, organizer or viewer)", role)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
			token, err := manager.Generate(strings.TrimSpace(args[0]), string(normalized))
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(auth.RoleOrganizer), "token role (admin, organizer, viewer)")
	return cmd
}
