package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/seeding"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func createAdminCmd() *cobra.Command {
	var in seeding.AdminInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office administrator account",
		Example: `  sitectl create-admin --email admin@example.com --name "Hélène" --password 's3cret-pass'
  STRATASITE_MONGO_URI=mongodb://db:27017 sitectl create-admin --email a@b.fr --password xxxxxxxx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				u, err := seeding.CreateAdmin(ctx, e.db, in)
				if errors.Is(err, seeding.ErrAdminExists) {
					return fmt.Errorf("%s: %w", in.Email, err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", u.Email, u.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func listAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List back-office accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				users, err := userstore.New(e.db).ListAll(ctx)
				if err != nil {
					return err
				}
				printUsers(cmd.OutOrStdout(), users)
				return nil
			})
		},
	}
}

func printUsers(w io.Writer, users []models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tSTATUS\tLAST LOGIN")
	for _, u := range users {
		last := "never"
		if u.LastLoginAt != nil {
			last = u.LastLoginAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Email, u.FullName, u.Status, last)
	}
	_ = tw.Flush()
}

func setAdminStatusCmd() *cobra.Command {
	var email, st string
	cmd := &cobra.Command{
		Use:     "set-admin-status",
		Short:   "Enable or disable a back-office account",
		Example: `  sitectl set-admin-status --email old@example.com --status disabled`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				users := userstore.New(e.db)
				u, err := users.GetByEmail(ctx, email)
				if errors.Is(err, mongo.ErrNoDocuments) {
					return fmt.Errorf("no account for %s", email)
				}
				if err != nil {
					return err
				}
				if err := users.SetStatus(ctx, u.ID, st); err != nil {
					return fmt.Errorf("%s: %w", u.Email, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, normalize.Status(st))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&st, "status", "", "active or disabled (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
