package inspections

import (
	"encoding/json"
	"time"
)

// SentinelTitle marks the inspections row reserved for configuration. It is
// hidden from listings and survives an admin reset.
const SentinelTitle = "__cfg__"

// Inspection aggregate root
type Inspection struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	Inspector string    `json:"inspector"`
	CreatedAt time.Time `json:"created_at"`
}

// Finding is one defect recorded during a walkthrough. Nullable columns are
// pointers so they round-trip as JSON null.
type Finding struct {
	ID              string    `json:"id"`
	InspectionID    string    `json:"inspection_id"`
	ZoneID          *string   `json:"zone_id"`
	ItemLabel       string    `json:"item_label"`
	Description     string    `json:"description"`
	DescriptionAI   *string   `json:"description_ai"`
	Recommendations *string   `json:"recommendations"`
	Severity        string    `json:"severity"`
	PhotoURL        *string   `json:"photo_url"`
	AIAnalysis      *string   `json:"ai_analysis"` // deprecated, read-only
	CreatedAt       time.Time `json:"created_at"`
}

// Enrichment is the machine-written text for a single finding.
type Enrichment struct {
	ID              string `json:"id"`
	DescriptionAI   string `json:"description_ai"`
	Recommendations string `json:"recommendations"`
}

// Empty reports whether the generator produced nothing usable for the finding.
func (e Enrichment) Empty() bool {
	return e.DescriptionAI == ""
}

// EnrichmentRequest is the minimal view of a finding sent to the generator.
type EnrichmentRequest struct {
	ID          string `json:"id"`
	ZoneName    string `json:"zoneName,omitempty"`
	ItemLabel   string `json:"itemLabel"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts zoneName/itemLabel and the zone_name/item_label
// spelling. The camelCase value wins when both are set.
func (r *EnrichmentRequest) UnmarshalJSON(data []byte) error {
	type plain EnrichmentRequest
	var wire struct {
		plain
		ZoneNameSnake  string `json:"zone_name"`
		ItemLabelSnake string `json:"item_label"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = EnrichmentRequest(wire.plain)
	if r.ZoneName == "" {
		r.ZoneName = wire.ZoneNameSnake
	}
	if r.ItemLabel == "" {
		r.ItemLabel = wire.ItemLabelSnake
	}
	return nil
}
