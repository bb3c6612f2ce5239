package sqlite

import "github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"

var Dialect = sqlstore.Dialect{
	Name:  "sqlite",
	Quote: `"`,
	UpsertConfig: `
INSERT INTO app_config ("key", value) VALUES (?, ?)
ON CONFLICT ("key") DO UPDATE SET value = excluded.value`,
	ColumnExists: `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS inspections (
  id         TEXT     PRIMARY KEY,
  title      TEXT     NOT NULL,
  location   TEXT     NOT NULL DEFAULT '',
  inspector  TEXT     NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS findings (
  id            TEXT     PRIMARY KEY,
  inspection_id TEXT     NOT NULL REFERENCES inspections (id),
  item_label    TEXT     NOT NULL DEFAULT '',
  description   TEXT     NOT NULL,
  severity      TEXT     NOT NULL DEFAULT '',
  photo_url     TEXT,
  ai_analysis   TEXT,
  created_at    DATETIME NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_inspection ON findings (inspection_id)`,
		`CREATE TABLE IF NOT EXISTS app_config (
  "key" TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`,
	},
}
