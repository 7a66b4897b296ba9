package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Encode renders a configuration in one of the formats it can be read from.
func Encode(cfg *Config, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		buf := bytes.Buffer{}
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "toml":
		buf := bytes.Buffer{}
		encoder := toml.NewEncoder(&buf)
		encoder.SetIndentTables(true)
		if err := encoder.Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "json":
		bytes, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(bytes, '\n'), nil

	default:
		return nil, fmt.Errorf("Invalid format %q (valid: yaml, toml, json)", format)
	}
}
