package sqlstore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	domain "github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

type InspectionRepository struct {
	db *sql.DB
	d  Dialect
}

func NewInspectionRepository(db *sql.DB, d Dialect) *InspectionRepository {
	return &InspectionRepository{db: db, d: d}
}

// Save inserts a new inspection row
func (r *InspectionRepository) Save(ctx context.Context, in *domain.Inspection) error {
	const q = `
INSERT INTO inspections (id, title, location, inspector, created_at)
VALUES (?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, r.d.Rebind(q), in.ID, in.Title, in.Location, in.Inspector, in.CreatedAt)
	return eris.Wrap(err, "insert inspection")
}

// Get by ID; sql.ErrNoRows is preserved in the chain
func (r *InspectionRepository) Get(ctx context.Context, id string) (*domain.Inspection, error) {
	const q = `
SELECT id, title, location, inspector, created_at
FROM inspections
WHERE id = ?`
	var in domain.Inspection
	err := r.db.QueryRowContext(ctx, r.d.Rebind(q), id).
		Scan(&in.ID, &in.Title, &in.Location, &in.Inspector, &in.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "get inspection %s", id)
	}
	return &in, nil
}

// List returns all inspections except the sentinel, newest first
func (r *InspectionRepository) List(ctx context.Context) ([]*domain.Inspection, error) {
	const q = `
SELECT id, title, location, inspector, created_at
FROM inspections
WHERE title <> ?
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), domain.SentinelTitle)
	if err != nil {
		return nil, eris.Wrap(err, "list inspections")
	}
	defer rows.Close()

	out := make([]*domain.Inspection, 0)
	for rows.Next() {
		var in domain.Inspection
		if err := rows.Scan(&in.ID, &in.Title, &in.Location, &in.Inspector, &in.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "scan inspection")
		}
		out = append(out, &in)
	}
	return out, eris.Wrap(rows.Err(), "iterate inspections")
}

// DeleteAll keeps only the sentinel config row
func (r *InspectionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM inspections WHERE title <> ?`), domain.SentinelTitle)
	return eris.Wrap(err, "delete inspections")
}
