package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/nfeed/internal/auth"
	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/config"
	"github.com/kestrelhq/nfeed/internal/paths"
	"github.com/kestrelhq/nfeed/internal/repository"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Tail live notifications to stdout",
		Long:  "Connects to the notification stream and prints each event as it arrives. Useful for piping and debugging.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
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

			tokenSource := auth.NewDBTokenSource(repo.Tokens)

			hasToken, err := tokenSource.HasToken(ctx)
			if err != nil {
				return err
			}
			if !hasToken {
				return fmt.Errorf("not logged in - run `nfeed login --token <token>`")
			}

			logger := xslog.NewLoggerFromEnv(os.Stderr)

			stream := ws.NewClient(cfg.WebSocketURL(), tokenSource,
				ws.WithLogger(logger),
				ws.WithMaxAttempts(cfg.MaxReconnectAttempts),
			)

			err = stream.Connect(ctx, func(ev ws.Event) {
				switch ev.Kind {
				case ws.KindNewNotification:
					n := ev.Notification
					fmt.Printf("%s  [%s/%s]  %s: %s\n",
						n.CreatedAt.Format("15:04:05"), n.Category, n.Priority, n.Title, n.Message)
				case ws.KindNotificationRead:
					fmt.Printf("read: %s\n", ev.NotificationID)
				}
			})
			if err != nil && ctx.Err() == nil {
				return err
			}

			return nil
		},
	}
}
