package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/bryanwahyu/inspecta/internal/application"
	domain "github.com/bryanwahyu/inspecta/internal/domain/settings"
)

// ZonesKey holds the zone catalogue as a JSON array of {id, name}.
const ZonesKey = "zones_config"

type Service struct {
	Repo domain.Repository
}

// Save upserts every key. JSON strings are stored as-is, any other value as
// its compact JSON text. Returns the saved keys sorted.
func (s *Service) Save(ctx context.Context, values map[string]json.RawMessage) ([]string, error) {
	entries := make([]domain.Entry, 0, len(values))
	for key, raw := range values {
		if strings.TrimSpace(key) == "" {
			return nil, application.Invalid("config key must not be empty")
		}
		value, err := stringify(raw)
		if err != nil {
			return nil, application.Invalid("config %q: %v", key, err)
		}
		entries = append(entries, domain.Entry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	if err := s.Repo.Upsert(ctx, entries); err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

// All returns the stored map; values are always strings.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	entries, err := s.Repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// ZoneNames maps zone id to name from the zones_config entry. A missing
// entry yields an empty map.
func (s *Service) ZoneNames(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := all[ZonesKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}

	var zones []struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &zones); err != nil {
		return nil, eris.Wrapf(err, "parse %s", ZonesKey)
	}
	out := make(map[string]string, len(zones))
	for _, z := range zones {
		id := strings.Trim(string(z.ID), `"`)
		if id != "" {
			out[id] = z.Name
		}
	}
	return out, nil
}

func stringify(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "null", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
