package app

import (
	"context"
	"fmt"
	"io"

	"jobpilot/internal/config"
	"jobpilot/internal/logging"
	"jobpilot/internal/store"
)

// App is the dependency container for the CLI application.
type App struct {
	Config *config.Config
	Logger *logging.Logger
	Store  *store.Store

	logFile io.WriteCloser
}

// NewApp initializes configuration, logging and the history store.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logFile, err := logging.NewFileSink(cfg.SystemLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel), nil, logFile)

	st, err := store.Open(cfg.HistoryDB)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		logFile: logFile,
	}, nil
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		firstErr = a.Store.Close()
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
