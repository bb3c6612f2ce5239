package main

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/bryanwahyu/inspecta/internal/config"
	mysqlp "github.com/bryanwahyu/inspecta/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/inspecta/internal/infra/db/postgres"
	sqlitep "github.com/bryanwahyu/inspecta/internal/infra/db/sqlite"
	"github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"
)

// openDB connects the configured driver and returns its dialect.
func openDB(ctx context.Context, c *config.Config) (*sql.DB, sqlstore.Dialect, error) {
	switch c.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, c.MySQLDSN())
		return db, mysqlp.Dialect, err
	case "postgres":
		db, err := postgresp.Connect(ctx, c.PostgresDSN())
		return db, postgresp.Dialect, err
	case "sqlite":
		db, err := sqlitep.Connect(ctx, c.Database.Path)
		return db, sqlitep.Dialect, err
	default:
		return nil, sqlstore.Dialect{}, eris.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}
