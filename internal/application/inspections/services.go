package inspections

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/application"
	domain "github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

// Enricher produces best-effort enrichments. It fails as a whole only when
// the provider cannot be used at all.
type Enricher interface {
	Enrich(ctx context.Context, findings []domain.EnrichmentRequest) ([]domain.Enrichment, error)
}

// ZoneNamer resolves zone ids to display names for enrichment prompts.
type ZoneNamer interface {
	ZoneNames(ctx context.Context) (map[string]string, error)
}

// Service implements use-cases untuk inspections dan findings
type Service struct {
	Inspections domain.InspectionRepository
	Findings    domain.FindingRepository
	Schema      domain.Migrator
	Enricher    Enricher
	Zones       ZoneNamer
	Clock       application.Clock
	// NewID defaults to uuid.NewString.
	NewID func() string
}

//
// ==== USE CASES ====
//

type CreateInspectionCommand struct {
	Title     string `json:"title"`
	Location  string `json:"location"`
	Inspector string `json:"inspector"`
}

// CreateInspection inserts a new inspection and returns its id.
func (s *Service) CreateInspection(ctx context.Context, cmd CreateInspectionCommand) (string, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return "", application.Invalid("title is required")
	}
	if title == domain.SentinelTitle {
		return "", application.Invalid("title %q is reserved", domain.SentinelTitle)
	}

	in := &domain.Inspection{
		ID:        s.newID(),
		Title:     title,
		Location:  strings.TrimSpace(cmd.Location),
		Inspector: strings.TrimSpace(cmd.Inspector),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Inspections.Save(ctx, in); err != nil {
		return "", err
	}
	return in.ID, nil
}

func (s *Service) ListInspections(ctx context.Context) ([]*domain.Inspection, error) {
	return s.Inspections.List(ctx)
}

// CreateFindingCommand mirrors the POST /findings body. AIAnalysis is
// accepted for older clients and discarded.
type CreateFindingCommand struct {
	InspectionID string  `json:"inspectionId"`
	ZoneID       *string `json:"zoneId"`
	ItemLabel    string  `json:"itemLabel"`
	Description  string  `json:"description"`
	Severity     string  `json:"severity"`
	PhotoURL     *string `json:"photoUrl"`
	AIAnalysis   *string `json:"aiAnalysis"`
}

// CreateFinding inserts a finding. The inspection reference is checked by
// the store, not here.
func (s *Service) CreateFinding(ctx context.Context, cmd CreateFindingCommand) (string, error) {
	if strings.TrimSpace(cmd.InspectionID) == "" {
		return "", application.Invalid("inspectionId is required")
	}

	f := &domain.Finding{
		ID:           s.newID(),
		InspectionID: strings.TrimSpace(cmd.InspectionID),
		ZoneID:       blankToNil(cmd.ZoneID),
		ItemLabel:    strings.TrimSpace(cmd.ItemLabel),
		Description:  strings.TrimSpace(cmd.Description),
		Severity:     strings.TrimSpace(cmd.Severity),
		PhotoURL:     blankToNil(cmd.PhotoURL),
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Findings.Save(ctx, f); err != nil {
		return "", err
	}
	return f.ID, nil
}

// ListFindings returns findings newest first; inspectionID narrows the list.
func (s *Service) ListFindings(ctx context.Context, inspectionID string) ([]*domain.Finding, error) {
	return s.Findings.List(ctx, strings.TrimSpace(inspectionID))
}

type EnrichResult struct {
	Results []domain.Enrichment `json:"results"`
	Updated int                 `json:"updated"`
}

// EnrichInspection runs the batcher over every finding of an inspection and
// stores the non-empty results. Degraded findings keep their previous text.
func (s *Service) EnrichInspection(ctx context.Context, inspectionID string) (EnrichResult, error) {
	if _, err := s.Inspections.Get(ctx, inspectionID); err != nil {
		return EnrichResult{}, err
	}
	findings, err := s.Findings.List(ctx, inspectionID)
	if err != nil {
		return EnrichResult{}, err
	}

	zones := s.zoneNames(ctx)
	reqs := make([]domain.EnrichmentRequest, 0, len(findings))
	for _, f := range findings {
		req := domain.EnrichmentRequest{ID: f.ID, ItemLabel: f.ItemLabel, Description: f.Description}
		if f.ZoneID != nil {
			req.ZoneName = *f.ZoneID
			if name, ok := zones[*f.ZoneID]; ok && name != "" {
				req.ZoneName = name
			}
		}
		reqs = append(reqs, req)
	}

	results, err := s.Enricher.Enrich(ctx, reqs)
	if err != nil {
		return EnrichResult{}, err
	}
	res := EnrichResult{Results: results}
	for _, e := range res.Results {
		if e.Empty() {
			continue
		}
		if err := s.Findings.UpdateEnrichment(ctx, e); err != nil {
			return res, eris.Wrapf(err, "store enrichment for %s", e.ID)
		}
		res.Updated++
	}
	zap.L().Info("inspection enriched",
		zap.String("inspection", inspectionID),
		zap.Int("findings", len(reqs)),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

// Reset wipes findings first, then every inspection except the sentinel row.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.Findings.DeleteAll(ctx); err != nil {
		return err
	}
	return s.Inspections.DeleteAll(ctx)
}

// Migrate reports ok only when every column migrated cleanly.
func (s *Service) Migrate(ctx context.Context) (bool, map[string]string) {
	out := s.Schema.Migrate(ctx)
	ok := true
	for _, status := range out {
		if status != "OK" {
			ok = false
		}
	}
	return ok, out
}

func (s *Service) zoneNames(ctx context.Context) map[string]string {
	if s.Zones == nil {
		return nil
	}
	names, err := s.Zones.ZoneNames(ctx)
	if err != nil {
		zap.L().Warn("zone names unavailable, using zone ids", zap.Error(err))
		return nil
	}
	return names
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
