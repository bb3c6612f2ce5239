package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bryanwahyu/inspecta/internal/domain/inspections"
)

const fence = "```"

// UnwrapCodeFence strips a leading ``` or ```json marker and a trailing ```
// from model output. Text without fences is returned trimmed.
func UnwrapCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, fence) {
		text = strings.TrimPrefix(text, fence)
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, fence)
	return strings.TrimSpace(text)
}

// ParseEnrichments decodes a generator reply into enrichments. The reply must
// be a JSON array; elements without an id or description_ai are dropped.
func ParseEnrichments(raw string) ([]inspections.Enrichment, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(UnwrapCodeFence(raw)), &items); err != nil {
		return nil, eris.Wrap(err, "ai: reply is not a JSON array")
	}
	if items == nil {
		return nil, eris.New("ai: reply is null")
	}

	out := make([]inspections.Enrichment, 0, len(items))
	for _, item := range items {
		var obj map[string]any
		if json.Unmarshal(item, &obj) != nil {
			continue
		}
		e := inspections.Enrichment{
			ID:              scalar(obj["id"]),
			DescriptionAI:   scalar(obj["description_ai"]),
			Recommendations: recommendations(obj["recommendations"]),
		}
		if e.ID == "" || e.DescriptionAI == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// recommendations accepts the requested " | " string and also a plain list.
func recommendations(v any) string {
	list, ok := v.([]any)
	if !ok {
		return scalar(v)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		if s := scalar(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, RecommendationSeparator)
}
