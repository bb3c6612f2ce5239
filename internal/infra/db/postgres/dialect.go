package postgres

import "github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"

var Dialect = sqlstore.Dialect{
	Name:     "postgres",
	Numbered: true,
	Quote:    `"`,
	UpsertConfig: `
INSERT INTO app_config ("key", value) VALUES (?, ?)
ON CONFLICT ("key") DO UPDATE SET value = EXCLUDED.value`,
	ColumnExists: `
SELECT COUNT(*) FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS inspections (
  id         VARCHAR(64)  PRIMARY KEY,
  title      VARCHAR(255) NOT NULL,
  location   VARCHAR(255) NOT NULL DEFAULT '',
  inspector  VARCHAR(255) NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ  NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS findings (
  id            VARCHAR(64)  PRIMARY KEY,
  inspection_id VARCHAR(64)  NOT NULL REFERENCES inspections (id),
  item_label    VARCHAR(255) NOT NULL DEFAULT '',
  description   TEXT         NOT NULL,
  severity      VARCHAR(32)  NOT NULL DEFAULT '',
  photo_url     TEXT,
  ai_analysis   TEXT,
  created_at    TIMESTAMPTZ  NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_inspection ON findings (inspection_id)`,
		`CREATE TABLE IF NOT EXISTS app_config (
  "key" VARCHAR(191) PRIMARY KEY,
  value TEXT NOT NULL
)`,
	},
}
