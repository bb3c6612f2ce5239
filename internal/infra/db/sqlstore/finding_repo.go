package sqlstore

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	domain "github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

type FindingRepository struct {
	db *sql.DB
	d  Dialect
}

func NewFindingRepository(db *sql.DB, d Dialect) *FindingRepository {
	return &FindingRepository{db: db, d: d}
}

// Save inserts a finding. ai_analysis is deprecated and never written.
func (r *FindingRepository) Save(ctx context.Context, f *domain.Finding) error {
	const q = `
INSERT INTO findings
 (id, inspection_id, zone_id, item_label, description, severity, photo_url, created_at)
VALUES (?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, r.d.Rebind(q),
		f.ID, f.InspectionID, f.ZoneID, f.ItemLabel, f.Description, f.Severity, f.PhotoURL, f.CreatedAt,
	)
	return eris.Wrap(err, "insert finding")
}

// List findings newest first, optionally for one inspection
func (r *FindingRepository) List(ctx context.Context, inspectionID string) ([]*domain.Finding, error) {
	q := `
SELECT id, inspection_id, zone_id, item_label, description, description_ai,
       recommendations, severity, photo_url, ai_analysis, created_at
FROM findings`
	var args []any
	if inspectionID != "" {
		q += "\nWHERE inspection_id = ?"
		args = append(args, inspectionID)
	}
	q += "\nORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, eris.Wrap(err, "list findings")
	}
	defer rows.Close()

	out := make([]*domain.Finding, 0)
	for rows.Next() {
		var f domain.Finding
		if err := rows.Scan(
			&f.ID, &f.InspectionID, &f.ZoneID, &f.ItemLabel, &f.Description, &f.DescriptionAI,
			&f.Recommendations, &f.Severity, &f.PhotoURL, &f.AIAnalysis, &f.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "scan finding")
		}
		out = append(out, &f)
	}
	return out, eris.Wrap(rows.Err(), "iterate findings")
}

// UpdateEnrichment writes the machine text back to one finding
func (r *FindingRepository) UpdateEnrichment(ctx context.Context, e domain.Enrichment) error {
	const q = `
UPDATE findings
SET description_ai = ?, recommendations = ?
WHERE id = ?`
	_, err := r.db.ExecContext(ctx, r.d.Rebind(q), e.DescriptionAI, e.Recommendations, e.ID)
	return eris.Wrapf(err, "update enrichment %s", e.ID)
}

func (r *FindingRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM findings`)
	return eris.Wrap(err, "delete findings")
}
