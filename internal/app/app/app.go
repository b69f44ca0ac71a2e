package app

import (
	"database/sql"
	"embed"
	"fmt"

	"opslab/internal/app/config"
	"opslab/internal/app/logger"
	"opslab/internal/app/storage"
	"opslab/internal/app/storage/postgres"
)

type App struct {
	config       config.Config
	logger       logger.Logger
	db           *sql.DB
	transactions storage.TransactionRepository
	stopCh       chan struct{}
}

func New(cfg config.Config, logger logger.Logger, e embed.FS) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := applyMigrations(e, db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	transactions, err := postgres.NewTransactionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("transaction repository init: %w", err)
	}

	a := &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		transactions: transactions,
		stopCh:       make(chan struct{}),
	}

	go func() {
		<-a.stopCh
		a.logger.Info().Msg("Shutting down application")
	}()

	return a, nil
}

func (a *App) Stop() {
	close(a.stopCh)
	_ = a.db.Close()
}
