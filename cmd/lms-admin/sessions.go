package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage server sessions",
	}

	var email string
	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "End every session of a user",
		Long: `End every server session of a user. Bearer tokens already issued stay
valid until they expire; disable the account to stop those as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInfra(cmd.Context(), infraNeeds{Services: true}, func(deps *infra) error {
				u, err := lookupUser(cmd, deps, email)
				if err != nil {
					return err
				}
				n, err := deps.Sessions.RevokeUser(cmd.Context(), u.ID)
				if err != nil {
					return fmt.Errorf("revoke sessions: %w", err)
				}
				a.printf("revoked %d session(s) for %s\n", n, u.Email)
				return nil
			})
		},
	}
	revoke.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = revoke.MarkFlagRequired("email")

	cmd.AddCommand(revoke)
	return cmd
}
