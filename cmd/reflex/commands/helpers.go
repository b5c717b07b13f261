// Package commands implements the reflex CLI subcommands.
package commands

import (
	"database/sql"

	reflex "github.com/ontoframe/reflex"
	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/config"
	"github.com/ontoframe/reflex/db"
	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/logger"
	"github.com/ontoframe/reflex/source"
)

// openDatabase loads configuration, opens the change-log database and
// applies pending migrations.
func openDatabase() (*sql.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, nil, errors.Wrap(err, "failed to migrate database")
	}

	return database, cfg, nil
}

// buildEngine wires a full engine from configuration: directory facet
// source, configured context registry, change log over the database.
func buildEngine(database *sql.DB, cfg *config.Config) (*reflex.Engine, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build context registry")
	}

	log := changelog.NewSQLStore(database, logger.Logger)
	src := source.NewDirectory(cfg.Source.Dir)

	return reflex.New(src, registry, log), nil
}
