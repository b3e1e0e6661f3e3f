package validator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfiguration(t *testing.T) {
	want := Configuration{
		"shape":         "https://example.org/shapes.ttl",
		"data-format":   "json-ld",
		"output-format": "n-triples",
	}
	files := map[string]string{
		"config.yaml": "shape: https://example.org/shapes.ttl\ndata-format: json-ld\noutput-format: n-triples\n",
		"config.yml":  "shape: https://example.org/shapes.ttl\ndata-format: json-ld\noutput-format: n-triples\n",
		"config.toml": "shape = \"https://example.org/shapes.ttl\"\ndata-format = \"json-ld\"\noutput-format = \"n-triples\"\n",
		"config.json": `{"shape": "https://example.org/shapes.ttl", "data-format": "json-ld", "output-format": "n-triples"}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfiguration(writeFile(t, name, content))
			require.NoError(t, err)
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Fatalf("configuration mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"missing":     filepath.Join(t.TempDir(), "absent.yaml"),
		"unsupported": writeFile(t, "config.ini", "shape=x"),
		"bad yaml":    writeFile(t, "config.yaml", "shape: [unclosed"),
		"bad toml":    writeFile(t, "config.toml", "shape = "),
		"bad json":    writeFile(t, "config.json", "{"),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfiguration(path)
			assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
		})
	}
}

func TestConfigurationMergeAndString(t *testing.T) {
	base := Configuration{"shape": "a", "data-format": "turtle"}
	merged := base.Merge(Configuration{"data-format": "nt", "extra": 1})
	assert.Equal(t, Configuration{"shape": "a", "data-format": "nt", "extra": 1}, merged)
	assert.Equal(t, "turtle", base["data-format"], "Merge must not modify its receiver")

	s, ok, err := merged.String("data-format")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nt", s)

	_, ok, err = merged.String("output-format")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = merged.String("extra")
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "extra", cfgErr.Key)
}
