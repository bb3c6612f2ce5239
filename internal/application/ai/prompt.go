package ai

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

// NoZone replaces an empty zone name in the rendered finding block.
const NoZone = "Sin zona"

// RecommendationSeparator joins recommendations inside one string.
const RecommendationSeparator = " | "

const enrichmentTemplate = `Eres un especialista en seguridad e higiene industrial en México y conoces a fondo las Normas Oficiales Mexicanas de la STPS (NOM-001-STPS, NOM-002-STPS, NOM-004-STPS, NOM-006-STPS, NOM-009-STPS, NOM-017-STPS, NOM-022-STPS, NOM-029-STPS, NOM-030-STPS, entre otras).

A continuación se listan hallazgos detectados durante un recorrido de inspección. Para cada hallazgo:
1. Reescribe la descripción original en lenguaje técnico, claro y profesional, sin inventar datos que no estén en el texto (campo "description_ai").
2. Redacta de 2 a 3 recomendaciones concretas y accionables para corregirlo, citando la NOM aplicable cuando corresponda, unidas con el separador "%s" (campo "recommendations").

Hallazgos:

%s

Responde ÚNICAMENTE con un arreglo JSON válido, sin formato markdown ni bloques de código, con un objeto por hallazgo y conservando exactamente el "id" recibido:
[{"id": "<id>", "description_ai": "<descripción mejorada>", "recommendations": "<recomendación 1>%s<recomendación 2>%s<recomendación 3>"}]`

// FindingBlock renders one finding as an enumerated block; n starts at 1.
func FindingBlock(n int, f inspections.EnrichmentRequest) string {
	zone := strings.TrimSpace(f.ZoneName)
	if zone == "" {
		zone = NoZone
	}
	return fmt.Sprintf("%d. [id: %s]\nZona: %s\nElemento: %s\nDescripción original: %s",
		n, f.ID, zone, f.ItemLabel, f.Description)
}

// EnrichmentPrompt builds the prompt for one chunk of findings.
func EnrichmentPrompt(findings []inspections.EnrichmentRequest) string {
	blocks := make([]string, len(findings))
	for i, f := range findings {
		blocks[i] = FindingBlock(i+1, f)
	}
	return fmt.Sprintf(enrichmentTemplate,
		RecommendationSeparator,
		strings.Join(blocks, "\n\n"),
		RecommendationSeparator, RecommendationSeparator,
	)
}

const summaryTemplate = `Eres un especialista en seguridad industrial en México (normatividad STPS). Con base en la siguiente información de una inspección, redacta un resumen ejecutivo en español de máximo tres párrafos: estado general de la instalación, riesgos más relevantes por severidad y prioridades de atención con la NOM aplicable. Responde en texto plano, sin markdown.

Información de la inspección:

%s`

// SummaryPrompt wraps free-form inspection context in the summary instruction.
func SummaryPrompt(details string) string {
	return fmt.Sprintf(summaryTemplate, strings.TrimSpace(details))
}
