// Package repository selects the persistence backend for the configured
// environment.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain/repositories"
	"cloudfiles/internal/repository/memory"
	"cloudfiles/internal/repository/postgres"
)

// Set bundles the repositories the services depend on
type Set struct {
	Folders   repositories.FolderRepository
	Files     repositories.FileRepository
	TxManager repositories.TransactionManager
	Backend   string

	close func()
}

// Close releases the database pool, if any
func (s *Set) Close() {
	if s.close != nil {
		s.close()
	}
}

// Setup connects to PostgreSQL when DATABASE_URL is set and falls back to
// the in-memory store otherwise.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Set, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store (data is lost on restart)")
		store := memory.NewStore()
		return &Set{
			Folders:   memory.NewFolderRepository(store),
			Files:     memory.NewFileRepository(store),
			TxManager: memory.NewTransactionManager(store),
			Backend:   "memory",
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
		"table_prefix", cfg.TablePrefix,
	)

	return &Set{
		Folders:   postgres.NewFolderRepository(repoConfig),
		Files:     postgres.NewFileRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(repoConfig),
		Backend:   "postgres",
		close:     pool.Close,
	}, nil
}
