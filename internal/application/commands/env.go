package commands

import (
	"github.com/google/uuid"

	"thesaurus/internal/application/traversal"
	"thesaurus/internal/config"
	"thesaurus/internal/logger"
	"thesaurus/internal/ports"
)

// Env bundles the collaborators every job needs. Config is resolved once
// by the caller and read-only afterwards.
type Env struct {
	Store  ports.ResourceStore
	Index  ports.ConceptIndex
	Config config.Config
	Log    *logger.Logger

	accessor *traversal.Accessor
	walker   *traversal.Walker
}

// NewEnv wires an Env. A nil logger discards output.
func NewEnv(store ports.ResourceStore, index ports.ConceptIndex, cfg config.Config, log *logger.Logger) *Env {
	if log == nil {
		log = logger.Nop()
	}
	acc := traversal.NewAccessor(store, cfg, log)
	return &Env{
		Store:    store,
		Index:    index,
		Config:   cfg,
		Log:      log,
		accessor: acc,
		walker:   traversal.NewWalker(acc, cfg.MaxDepth),
	}
}

// Accessor returns the link accessor over Store
func (e *Env) Accessor() *traversal.Accessor {
	return e.accessor
}

// Walker returns the tree walker over Store
func (e *Env) Walker() *traversal.Walker {
	return e.walker
}

// clearCache drops loaded resources when the store caches them
func (e *Env) clearCache() {
	if c, ok := e.Store.(ports.CacheClearer); ok {
		c.Clear()
	}
}

func (e *Env) batchSize() int {
	if e.Config.BatchSize > 0 {
		return e.Config.BatchSize
	}
	return config.DefaultBatchSize
}

func newRunID() string {
	return uuid.NewString()
}
