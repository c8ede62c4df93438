// Package app wires the thesaurus collaborators shared by the command line
// and the tool server.
package app

import (
	"fmt"

	"thesaurus/internal/adapters/cache"
	"thesaurus/internal/adapters/sqlite"
	"thesaurus/internal/application/commands"
	"thesaurus/internal/application/query"
	"thesaurus/internal/config"
	"thesaurus/internal/logger"
)

type App struct {
	Log    *logger.Logger
	Cfg    config.Config
	DB     *sqlite.DB
	Store  *cache.Store
	Env    *commands.Env
	Facade *query.Facade
}

// New loads the configuration at configPath (empty for defaults), opens the
// database and wires the job environment and the query facade. A non-empty
// logMode overrides the configured one.
func New(configPath, logMode string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logMode != "" {
		cfg.LogMode = logMode
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := cache.New(db.Store(), cache.DefaultSize)
	if err != nil {
		_ = db.Close()
		log.Sync()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	index := db.Index()
	env := commands.NewEnv(store, index, cfg, log)
	log.Debug("thesaurus ready", "db", db.Path(), "needs_full_rebuild", index.NeedsFullRebuild())

	return &App{
		Log:    log,
		Cfg:    cfg,
		DB:     db,
		Store:  store,
		Env:    env,
		Facade: query.NewFacade(env.Walker(), index, cfg, log),
	}, nil
}

// Close flushes the logger and closes the database
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	a.Log.Sync()
	return a.DB.Close()
}
