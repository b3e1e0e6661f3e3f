package validator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Configuration is the input mapping of a validator. Recognised keys are
// KeyShape (required), KeyShapeFormat, KeyDataFormat and KeyOutputFormat;
// other keys are ignored.
type Configuration map[string]any

// Merge returns a new configuration holding c overlaid with overrides.
// Neither input is modified.
func (c Configuration) Merge(overrides Configuration) Configuration {
	out := make(Configuration, len(c)+len(overrides))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// String returns the string value of key. A present non-string value is a
// *ConfigurationError.
func (c Configuration) String(key string) (string, bool, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, &ConfigurationError{Key: key, Reason: fmt.Sprintf("expected a string, got %T", raw)}
	}
	return s, true, nil
}

// LoadConfiguration reads a configuration file. The decoder is chosen by
// extension: .yaml/.yml, .toml or .json.
func LoadConfiguration(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: "cannot read " + path, Err: err}
	}
	cfg := Configuration{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unsupported configuration file type %q", ext)}
	}
	if err != nil {
		return nil, &ConfigurationError{Reason: "cannot decode " + path, Err: err}
	}
	return cfg, nil
}
