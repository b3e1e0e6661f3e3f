package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/rdf"
	"github.com/geoknoesis/shacl-go/shacl"
	"github.com/geoknoesis/shacl-go/validator"
)

const cliShapes = `@prefix sh: <http://www.w3.org/ns/shacl#> .
<http://example.org/PersonShape> a sh:NodeShape ;
    sh:targetClass <http://example.org/Person> ;
    sh:property [ sh:path <http://example.org/name> ; sh:minCount 1 ] .
`

const (
	cliValid   = `<http://example.org/alice> a <http://example.org/Person> ; <http://example.org/name> "Alice" .`
	cliInvalid = `<http://example.org/bob> a <http://example.org/Person> .`
)

// testCommand returns a command carrying the configuration flags, with the
// globals reset for the test.
func testCommand(t *testing.T, stdin string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	configPath, shape, shapeFormat, dataFormat, outputFormat = "", "", "", "", ""
	concurrency, failOnViolation = 0, false
	patternTimeout = shacl.DefaultPatternTimeout

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&shape, "shape", "", "")
	cmd.Flags().StringVar(&shapeFormat, "shape-format", "", "")
	cmd.Flags().StringVar(&dataFormat, "data-format", "", "")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "")
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigurationFlagsOverrideFile(t *testing.T) {
	cmd, _ := testCommand(t, "")
	configPath = writeFile(t, "validator.yaml", "shape-format: turtle\noutput-format: json-ld\n")
	require.NoError(t, cmd.Flags().Set("output-format", "nt"))
	require.NoError(t, cmd.Flags().Set("shape", writeFile(t, "shapes.ttl", cliShapes)))

	cfg, err := configuration(cmd)
	require.NoError(t, err)
	assert.Equal(t, "turtle", cfg[validator.KeyShapeFormat])
	assert.Equal(t, "nt", cfg[validator.KeyOutputFormat])
	assert.Equal(t, cliShapes, cfg[validator.KeyShape], "shape file is read")
}

func TestReadIfFile(t *testing.T) {
	path := writeFile(t, "data.ttl", cliValid)
	missing := filepath.Join(t.TempDir(), "missing.ttl")
	for _, tc := range []struct{ in, want string }{
		{path, cliValid},
		{"https://example.org/data.ttl", "https://example.org/data.ttl"},
		{cliValid, cliValid},
		{missing, missing},
		{t.TempDir(), ""},
	} {
		want := tc.want
		if want == "" {
			want = tc.in
		}
		got, err := readIfFile(tc.in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestInputs(t *testing.T) {
	path := writeFile(t, "data.ttl", cliInvalid)
	got, err := inputs(strings.NewReader(cliValid), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{cliValid}, got)

	got, err = inputs(strings.NewReader(cliValid), []string{path, "-"})
	require.NoError(t, err)
	assert.Equal(t, []string{cliInvalid, cliValid}, got)
}

func TestRunValidate(t *testing.T) {
	cmd, out := testCommand(t, cliValid)
	require.NoError(t, cmd.Flags().Set("shape", cliShapes))
	require.NoError(t, runValidate(cmd, nil))
	report, err := rdf.Parse(context.Background(), out.Bytes(), rdf.FormatTurtle)
	require.NoError(t, err)
	roots := report.SubjectsOf(rdf.RDFType, shacl.ValidationReport)
	require.Len(t, roots, 1)
	flag, ok := report.Object(roots[0], shacl.Conforms)
	require.True(t, ok)
	assert.Equal(t, rdf.NewLiteral("true", rdf.XSDBoolean), flag)

	cmd, out = testCommand(t, "")
	require.NoError(t, cmd.Flags().Set("shape", cliShapes))
	require.NoError(t, cmd.Flags().Set("output-format", "n-triples"))
	failOnViolation = true
	err = runValidate(cmd, []string{writeFile(t, "a.ttl", cliValid), writeFile(t, "b.ttl", cliInvalid)})
	assert.True(t, errors.Is(err, errViolations))
	assert.Equal(t, 2, strings.Count(out.String(), "<http://www.w3.org/ns/shacl#ValidationReport>"))
}

func TestRunValidateConfigurationErrors(t *testing.T) {
	cmd, _ := testCommand(t, cliValid)
	err := runValidate(cmd, nil)
	assert.ErrorIs(t, err, validator.ErrConfiguration)

	cmd, _ = testCommand(t, cliValid)
	require.NoError(t, cmd.Flags().Set("shape", cliShapes))
	require.NoError(t, cmd.Flags().Set("data-format", "csv"))
	err = runValidate(cmd, nil)
	assert.ErrorIs(t, err, validator.ErrUnsupportedFormat)
}

func TestRunValidatePatternTimeout(t *testing.T) {
	const shapes = `@prefix sh: <http://www.w3.org/ns/shacl#> .
<http://example.org/CodeShape> a sh:NodeShape ;
    sh:targetNode <http://example.org/item> ;
    sh:property [ sh:path <http://example.org/code> ; sh:pattern "^(a+)+$" ] .
`
	data := `<http://example.org/item> <http://example.org/code> "` + strings.Repeat("a", 40) + `!" .`

	cmd, out := testCommand(t, data)
	require.NoError(t, cmd.Flags().Set("shape", shapes))
	patternTimeout = 50 * time.Millisecond
	err := runValidate(cmd, nil)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(errViolations))
	assert.Equal(t, 2, exitCode(fmt.Errorf("batch: %w", errViolations)))
	assert.Equal(t, 1, exitCode(validator.ErrConfiguration))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
