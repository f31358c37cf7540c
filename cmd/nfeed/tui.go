package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/kestrelhq/nfeed/internal/auth"
	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/config"
	"github.com/kestrelhq/nfeed/internal/feed"
	"github.com/kestrelhq/nfeed/internal/paths"
	"github.com/kestrelhq/nfeed/internal/repository"
	"github.com/kestrelhq/nfeed/internal/tui"
	"github.com/kestrelhq/nfeed/internal/xslog"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	dir, err := paths.EnsureDir()
	if err != nil {
		return err
	}

	dbPath, err := paths.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sqlDB, repo, err := repository.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	// the TUI owns the terminal, so logs go to a file
	logger := xslog.NewLoggerFromEnv(io.Discard)
	if f, err := os.OpenFile(filepath.Join(dir, "nfeed.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
		defer func() { _ = f.Close() }()
		logger = xslog.NewLoggerFromEnv(f)
	}

	tokenSource := auth.NewDBTokenSource(repo.Tokens)

	client := kestrel.New(cfg.ServerURL, tokenSource, kestrel.WithLogger(logger))

	var (
		eventCh = make(chan ws.Event, 16)
		stateCh = make(chan ws.State, 8)
	)

	stream := ws.NewClient(cfg.WebSocketURL(), tokenSource,
		ws.WithLogger(logger),
		ws.WithMaxAttempts(cfg.MaxReconnectAttempts),
		ws.WithStateFunc(func(s ws.State) {
			// drop transitions rather than block the connect loop
			select {
			case stateCh <- s:
			default:
			}
		}),
	)

	fd := feed.New(client.Notifications,
		feed.WithSender(stream),
		feed.WithCache(repo.Notifications),
		feed.WithLogger(logger),
		feed.WithPageSize(cfg.PageSize),
	)

	// seed from the offline cache so the list renders before the first fetch
	if recent, err := repo.Notifications.Recent(ctx, cfg.PageSize); err == nil {
		fd.Prime(recent)
	}

	deps := tui.Deps{
		Ctx:          ctx,
		Cancel:       cancel,
		Logger:       logger,
		TokenChecker: tokenSource,
		Feed:         fd,
		Stream:       stream,
		EventCh:      eventCh,
		StateCh:      stateCh,
	}
	model := tui.New(deps)

	p := tea.NewProgram(&model)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	cancel()
	stream.Disconnect()
	fd.Wait()

	return nil
}
