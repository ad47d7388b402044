package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/config"
	"github.com/accessboard/accessboard/internal/db"
	"github.com/accessboard/accessboard/internal/projects"
)

// openStore connects to the configured project store, running migrations so
// the unique indexes exist before first use. Returns an error when the
// projects block is absent; callers that tolerate a disabled store check
// cfg.ProjectsEnabled() first.
func openStore(cfg *config.Config, log *zap.Logger) (*projects.Store, error) {
	if !cfg.ProjectsEnabled() {
		return nil, fmt.Errorf("projects are not configured; add a projects: block to the config")
	}
	p := cfg.Projects
	gdb, err := db.Connect(p.User, p.Password, p.Host, p.Port, p.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, err
	}
	return projects.NewStore(gdb, log), nil
}

// newLogger builds the process logger.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
