package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	yaml "go.yaml.in/yaml/v3"
)

// coerceToJSONBytes converts YAML and TOML config files to JSON bytes so one
// strict JSON decoder (DisallowUnknownFields) covers every format.
//
// Returns (jsonBytes, format, err) where format is "json", "yaml" or "toml".
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, "yaml", fmt.Errorf("yaml unmarshal: %w", err)
		}
		j, err := json.Marshal(normalizeKeys(v))
		if err != nil {
			return nil, "yaml", fmt.Errorf("yaml->json marshal: %w", err)
		}
		return j, "yaml", nil
	case ".toml":
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, "toml", fmt.Errorf("toml unmarshal: %w", err)
		}
		j, err := json.Marshal(normalizeKeys(v))
		if err != nil {
			return nil, "toml", fmt.Errorf("toml->json marshal: %w", err)
		}
		return j, "toml", nil
	default:
		return data, "json", nil
	}
}

// normalizeKeys forces all map keys to strings so the tree can be
// JSON-marshaled whatever the source decoder produced.
func normalizeKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeKeys(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeKeys(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeKeys(x[i])
		}
		return x
	default:
		return in
	}
}
