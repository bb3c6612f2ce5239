package inspections

import "context"

// InspectionRepository port (persistence untuk inspections)
type InspectionRepository interface {
	Save(ctx context.Context, in *Inspection) error
	Get(ctx context.Context, id string) (*Inspection, error)
	// List returns every inspection except the sentinel row, newest first.
	List(ctx context.Context) ([]*Inspection, error)
	// DeleteAll removes every inspection except the sentinel row.
	DeleteAll(ctx context.Context) error
}

// FindingRepository port (persistence untuk findings)
type FindingRepository interface {
	Save(ctx context.Context, f *Finding) error
	// List returns findings newest first; an empty inspectionID lists all.
	List(ctx context.Context, inspectionID string) ([]*Finding, error)
	UpdateEnrichment(ctx context.Context, e Enrichment) error
	DeleteAll(ctx context.Context) error
}

// Migrator applies additive schema changes.
type Migrator interface {
	// Migrate returns "OK" or "ERROR: <msg>" keyed by column name.
	Migrate(ctx context.Context) map[string]string
}
