package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/spendwise-dev/spendwise/internal/categorize"
	"github.com/spendwise-dev/spendwise/internal/config"
	"github.com/spendwise-dev/spendwise/internal/database"
	"github.com/spendwise-dev/spendwise/internal/logger"
	"github.com/spendwise-dev/spendwise/internal/store"
)

// project is an opened spendwise project directory.
type project struct {
	dir string
	cfg *config.Config
	log zerolog.Logger
}

// openProject loads <dir>/spendwise.yaml, or the defaults when the file is
// missing. Logs go to logOut.
func openProject(dir string, logOut io.Writer) (*project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(absDir)

	return &project{
		dir: absDir,
		cfg: cfg,
		log: logger.New(cfg.Log.Level, cfg.Log.Format, logOut),
	}, nil
}

// openStore connects to the configured database and migrates it. The
// returned func closes the connection.
func (p *project) openStore() (*store.Store, func(), error) {
	db, err := database.Open(p.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, err
	}
	return store.New(db), closeFn, nil
}

// rules returns the configured rule table, or the built-in one.
func (p *project) rules() ([]categorize.Rule, error) {
	path := p.cfg.Categorization.RulesFile
	if path == "" {
		return categorize.DefaultRules(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		p.log.Warn().Str("path", path).Msg("rules file not found, using built-in rules")
		return categorize.DefaultRules(), nil
	}
	return categorize.LoadRules(path)
}
