package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/spf13/cobra"
)

func syncContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-contact",
		Short: "Reconcile the contact page with the site settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "to-page",
		Short: "Copy contact details and map from settings into the contact page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				settings, err := settingsstore.New(e.db).GetOrCreate(ctx)
				if err != nil {
					return fmt.Errorf("load settings: %w", err)
				}
				rep, err := contactsync.New(e.db, e.logger).FromSettings(ctx, settings)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "to-settings",
		Short: "Copy the contact page's infos and map sections into settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				rep, err := contactsync.New(e.db, e.logger).FromPage(ctx)
				if errors.Is(err, contactsync.ErrContactPageNotFound) {
					return errors.New("no contact page; run `sitectl seed` first")
				}
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), rep)
				return nil
			})
		},
	})
	return cmd
}

func printReport(w io.Writer, rep contactsync.Report) {
	line := func(name string, res contactsync.Result) {
		if res.Applied {
			fmt.Fprintf(w, "%-6s synced\n", name)
			return
		}
		fmt.Fprintf(w, "%-6s skipped: %s\n", name, res.Reason)
	}
	line("infos", rep.Infos)
	line("map", rep.Map)
}
