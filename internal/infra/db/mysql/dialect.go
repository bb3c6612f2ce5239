package mysql

import "github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"

var Dialect = sqlstore.Dialect{
	Name:  "mysql",
	Quote: "`",
	UpsertConfig: "INSERT INTO app_config (`key`, value) VALUES (?, ?)\n" +
		"ON DUPLICATE KEY UPDATE value = VALUES(value)",
	ColumnExists: `
SELECT COUNT(*) FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS inspections (
  id         VARCHAR(64)  NOT NULL PRIMARY KEY,
  title      VARCHAR(255) NOT NULL,
  location   VARCHAR(255) NOT NULL DEFAULT '',
  inspector  VARCHAR(255) NOT NULL DEFAULT '',
  created_at DATETIME(6)  NOT NULL,
  INDEX idx_inspections_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS findings (
  id            VARCHAR(64)  NOT NULL PRIMARY KEY,
  inspection_id VARCHAR(64)  NOT NULL,
  item_label    VARCHAR(255) NOT NULL DEFAULT '',
  description   TEXT         NOT NULL,
  severity      VARCHAR(32)  NOT NULL DEFAULT '',
  photo_url     TEXT         NULL,
  ai_analysis   TEXT         NULL,
  created_at    DATETIME(6)  NOT NULL,
  INDEX idx_findings_inspection (inspection_id),
  INDEX idx_findings_created (created_at),
  CONSTRAINT fk_findings_inspection FOREIGN KEY (inspection_id) REFERENCES inspections (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		"CREATE TABLE IF NOT EXISTS app_config (\n" +
			"  `key` VARCHAR(191) NOT NULL PRIMARY KEY,\n" +
			"  value LONGTEXT NOT NULL\n" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	},
}
