package main

import (
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInfra(cmd.Context(), infraNeeds{}, func(deps *infra) error {
				if err := deps.Migrator.Run(cmd.Context()); err != nil {
					return err
				}
				a.printf("migrations applied\n")
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInfra(cmd.Context(), infraNeeds{}, func(deps *infra) error {
				migrations, err := deps.Migrator.Status(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fprintf(tw, "VERSION\tAPPLIED\n")
				for _, m := range migrations {
					applied := "pending"
					if m.AppliedAt != nil {
						applied = m.AppliedAt.UTC().Format("2006-01-02 15:04:05")
					}
					fprintf(tw, "%s\t%s\n", m.Version, applied)
				}
				return tw.Flush()
			})
		},
	})
	return cmd
}
