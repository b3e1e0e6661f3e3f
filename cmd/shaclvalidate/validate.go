package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/validator"
)

var errViolations = errors.New("data does not conform to the shapes")

// configuration merges the --config file with the flags set on the
// command line. Flags win.
func configuration(cmd *cobra.Command) (validator.Configuration, error) {
	cfg := validator.Configuration{}
	if configPath != "" {
		loaded, err := validator.LoadConfiguration(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := validator.Configuration{}
	for key, value := range map[string]*string{
		validator.KeyShape:        &shape,
		validator.KeyShapeFormat:  &shapeFormat,
		validator.KeyDataFormat:   &dataFormat,
		validator.KeyOutputFormat: &outputFormat,
	} {
		if cmd.Flags().Changed(key) {
			overrides[key] = *value
		}
	}
	cfg = cfg.Merge(overrides)

	if s, ok, err := cfg.String(validator.KeyShape); err == nil && ok {
		text, err := readIfFile(s)
		if err != nil {
			return nil, err
		}
		cfg[validator.KeyShape] = text
	}
	return cfg, nil
}

// readIfFile returns the content of value when it names an existing local
// file and value itself otherwise.
func readIfFile(value string) (string, error) {
	if value == "" || strings.ContainsAny(value, " \t\r\n") || validator.Classify(value).IsReference() {
		return value, nil
	}
	info, err := os.Stat(value)
	if err != nil || info.IsDir() {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", value, err)
	}
	return string(data), nil
}

// inputs collects the data payloads named by args.
func inputs(stdin io.Reader, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			out = append(out, string(data))
			continue
		}
		text, err := readIfFile(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := configuration(cmd)
	if err != nil {
		return err
	}
	v, err := validator.New(cmd.Context(), cfg,
		validator.WithLogger(logger),
		validator.WithConcurrency(concurrency),
		validator.WithPatternTimeout(patternTimeout))
	if err != nil {
		return err
	}

	data, err := inputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	reports, err := v.RunBatchReports(cmd.Context(), data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	violations := 0
	for _, report := range reports {
		text, err := v.Serialize(report)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
		if !report.Conforms {
			violations++
		}
	}
	logger.Info("validation complete", zap.Int("inputs", len(reports)), zap.Int("non_conforming", violations))

	if failOnViolation && violations > 0 {
		return errViolations
	}
	return nil
}
