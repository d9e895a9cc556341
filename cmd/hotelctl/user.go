package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func newUserCmd(cfg *shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-role <user-id> <user|owner|admin>",
		Short: "Change a user's role; owners and admins may register hotels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			u, err := app.NewUserService(store).SetRole(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", u.ID, u.Email, u.Role)
			return nil
		},
	})
	return cmd
}

func newTokenCmd(cfg *shared.Config) *cobra.Command {
	var (
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign an API token with AUTH_JWT_SECRET (for local testing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is not set")
			}
			tok, err := server.SignToken(cfg.JWTSecret, server.Identity{UserID: args[0], Email: email}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
