package main

import (
	"context"
	"fmt"

	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"github.com/dalemusser/stratasite/internal/app/system/seeding"
	"github.com/dalemusser/stratasite/internal/app/system/validators"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var schemaOnly bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create collections, indexes and the default site content",
		Long: `Ensure collections, validators and indexes, then seed the default
settings, pages and services.

Existing documents are never overwritten: missing pages are created,
missing sections are appended to existing pages, and services are only
seeded into an empty catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if err := validators.EnsureAll(ctx, e.db); err != nil {
					return fmt.Errorf("ensure validators: %w", err)
				}
				if err := indexes.EnsureAll(ctx, e.db); err != nil {
					return fmt.Errorf("ensure indexes: %w", err)
				}
				if schemaOnly {
					fmt.Fprintln(cmd.OutOrStdout(), "Schema ensured.")
					return nil
				}

				rep, err := seeding.SeedAll(ctx, e.db, e.logger)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Settings created: %t\n", rep.SettingsCreated)
				fmt.Fprintf(out, "Pages created:    %d\n", rep.PagesCreated)
				fmt.Fprintf(out, "Sections created: %d\n", rep.SectionsCreated)
				fmt.Fprintf(out, "Services created: %d\n", rep.ServicesCreated)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "only ensure collections and indexes")
	return cmd
}
