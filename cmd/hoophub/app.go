package main

import (
	"context"
	"fmt"

	"github.com/EliaCinti/HoopHub-sub002/internal/config"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage/filedb"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage/memdb"
	"github.com/EliaCinti/HoopHub-sub002/internal/storage/sqlitedb"
	syncx "github.com/EliaCinti/HoopHub-sub002/internal/sync"
)

// app bundles the wired storage layer for the CLI commands.
type app struct {
	cfg      *config.Config
	facade   *storage.Facade
	registry *syncx.Registry
	db       *sqlitedb.DB
	files    *filedb.Store
}

// openApp loads configuration, opens every backend, and attaches the
// observer set each backend's accessors register at construction.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	db, err := sqlitedb.Open(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite backend: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	files, err := filedb.Open(cfg.DataDir, cfg.Logger("[filedb] "))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open file backend: %w", err)
	}

	facade := storage.NewFacade(cfg.ActiveBackend())
	sqliteStores := sqlitedb.NewStores(db)
	fileStores := files.Stores()
	memStores := memdb.New().Stores()
	facade.Register(sqliteStores)
	facade.Register(fileStores)
	facade.Register(memStores)

	registry := syncx.NewRegistry(facade, cfg.Logger("[sync] "))
	registry.Attach(sqliteStores)
	registry.Attach(fileStores)
	registry.Attach(memStores)

	return &app{
		cfg:      cfg,
		facade:   facade,
		registry: registry,
		db:       db,
		files:    files,
	}, nil
}

// Close releases backend resources.
func (a *app) Close() error {
	return a.db.Close()
}
