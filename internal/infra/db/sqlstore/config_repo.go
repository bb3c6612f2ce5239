package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"

	domain "github.com/bryanwahyu/inspecta/internal/domain/settings"
)

// ConfigRepository stores the flat app_config map
type ConfigRepository struct {
	db *sql.DB
	d  Dialect
}

func NewConfigRepository(db *sql.DB, d Dialect) *ConfigRepository {
	return &ConfigRepository{db: db, d: d}
}

// Upsert writes each entry on its own; there is no transaction around the set.
func (r *ConfigRepository) Upsert(ctx context.Context, entries []domain.Entry) error {
	q := r.d.Rebind(r.d.UpsertConfig)
	for _, e := range entries {
		if _, err := r.db.ExecContext(ctx, q, e.Key, e.Value); err != nil {
			return eris.Wrapf(err, "upsert config %s", e.Key)
		}
	}
	return nil
}

func (r *ConfigRepository) All(ctx context.Context) ([]domain.Entry, error) {
	key := r.d.ident("key")
	q := fmt.Sprintf(`SELECT %s, value FROM app_config ORDER BY %s`, key, key)
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "list config")
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, eris.Wrap(err, "scan config")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "iterate config")
}
