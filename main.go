package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Bootstrap wires logger, journal and API client from cfg.
func Bootstrap(cfg *Config, out io.Writer, in io.Reader) (*App, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	repo, err := NewRepo(cfg.DBPath)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	client := NewAPIClient(cfg.APIBase, cfg.HTTPTimeout)
	return NewApp(cfg, logger, repo, client, out, in), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var app *App
	err := SetupCommands(&app).ExecuteContext(ctx)

	if app != nil {
		app.Close()
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
