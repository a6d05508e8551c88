package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"leadflow/internal/broker"
	"leadflow/internal/logger"
	"leadflow/pkg/bootstrap"
	"leadflow/pkg/logging"
)

// session is the wiring shared by CLI commands that talk to the backend.
type session struct {
	base     *bootstrap.Base
	logger   logger.Logger
	notifier *broker.Notifier
}

func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		logging.NewEarlyLog().Error("Failed to load config: %v", err)
		return err
	}

	log, err := newLogger(cfg.Logging.Level, "console")
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	base := bootstrap.NewBase(cfg, log)
	base.InitResolver(nil)
	if err := base.InitBroker(); err != nil {
		return err
	}
	// Shares the server's Redis cache so CLI mutations invalidate its entries.
	base.InitCache(ctx)
	defer func() {
		if err := base.Shutdown(context.Background()); err != nil {
			log.Warnw("Shutdown failed", "error", err)
		}
	}()

	return fn(ctx, &session{
		base:     base,
		logger:   log,
		notifier: broker.NewNotifier(base.Producer, cfg.Events.Kafka.Topic, log),
	})
}

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func decodeInput(cmd *cobra.Command, path string, v interface{}) error {
	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", inputName(path), err)
	}
	return nil
}

func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
