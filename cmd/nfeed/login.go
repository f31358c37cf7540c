package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/nfeed/internal/paths"
	"github.com/kestrelhq/nfeed/internal/repository"
)

func loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Kestrel access token",
		Long:  "Saves the access token locally so the feed and live stream can authenticate.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if token == "" {
				return fmt.Errorf("--token is required")
			}

			if _, err := paths.EnsureDir(); err != nil {
				return err
			}

			dbPath, err := paths.DB()
			if err != nil {
				return err
			}

			sqlDB, repo, err := repository.Open(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = sqlDB.Close() }()

			if err := repo.Tokens.Save(ctx, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Token saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Kestrel access token")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dbPath, err := paths.DB()
			if err != nil {
				return err
			}

			sqlDB, repo, err := repository.Open(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = sqlDB.Close() }()

			if err := repo.Tokens.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}

			fmt.Println("Token removed.")
			return nil
		},
	}
}
