package sqlstore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Column is an additive findings column managed by Migrate.
type Column struct {
	Name string
	Type string
}

// FindingColumns were added after the first release and may be missing on
// older databases.
var FindingColumns = []Column{
	{Name: "zone_id", Type: "VARCHAR(64) NULL"},
	{Name: "description_ai", Type: "TEXT NULL"},
	{Name: "recommendations", Type: "TEXT NULL"},
}

type Schema struct {
	db *sql.DB
	d  Dialect
}

func NewSchema(db *sql.DB, d Dialect) *Schema {
	return &Schema{db: db, d: d}
}

// Bootstrap creates the base tables and adds the FindingColumns, so the
// repositories work on a fresh database without a separate migrate call.
func (s *Schema) Bootstrap(ctx context.Context) error {
	if err := s.CreateTables(ctx); err != nil {
		return err
	}
	out := s.Migrate(ctx)
	for _, c := range FindingColumns {
		if status := out[c.Name]; status != "OK" {
			return eris.Errorf("%s: bootstrap column %s: %s", s.d.Name, c.Name, status)
		}
	}
	return nil
}

// CreateTables creates the base tables if they do not exist.
func (s *Schema) CreateTables(ctx context.Context) error {
	for _, stmt := range s.d.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrapf(err, "%s: create tables", s.d.Name)
		}
	}
	return nil
}

// Migrate adds every missing FindingColumns entry and reports per column.
func (s *Schema) Migrate(ctx context.Context) map[string]string {
	out := make(map[string]string, len(FindingColumns))
	for _, c := range FindingColumns {
		if err := s.addColumnIfMissing(ctx, "findings", c); err != nil {
			zap.L().Warn("migration failed", zap.String("column", c.Name), zap.Error(err))
			out[c.Name] = "ERROR: " + err.Error()
			continue
		}
		out[c.Name] = "OK"
	}
	return out
}

func (s *Schema) addColumnIfMissing(ctx context.Context, table string, c Column) error {
	var n int
	if err := s.db.QueryRowContext(ctx, s.d.Rebind(s.d.ColumnExists), table, c.Name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.d.addColumn(table, c))
	return err
}

// Ping is used by the health endpoint.
func (s *Schema) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
