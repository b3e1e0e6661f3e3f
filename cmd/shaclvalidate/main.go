package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geoknoesis/shacl-go/shacl"
)

var (
	// Configuration flags
	configPath   string
	shape        string
	shapeFormat  string
	dataFormat   string
	outputFormat string

	// Run flags
	verbose         bool
	patternTimeout  time.Duration
	concurrency     int
	failOnViolation bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shaclvalidate [data...]",
	Short: "Validate RDF data against SHACL shapes",
	Long: `shaclvalidate validates RDF data graphs against a SHACL shapes graph and
prints one validation report per input.

Each argument is an http(s) or file: locator, a path to a local file, or
"-" for standard input. With no arguments the data is read from standard
input.

Formats: turtle (ttl), json-ld, json-ld-11, n3, n-triples (nt), rdf/xml.

Example:
  shaclvalidate --shape shapes.ttl --output-format json-ld data.ttl`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runValidate,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (.yaml, .toml or .json)")
	flags.StringVarP(&shape, "shape", "s", "", "shapes graph: locator, file path or inline RDF")
	flags.StringVar(&shapeFormat, "shape-format", "", "format of the shapes graph (default turtle)")
	flags.StringVar(&dataFormat, "data-format", "", "format of the data graphs (default turtle)")
	flags.StringVarP(&outputFormat, "output-format", "o", "", "format of the reports (default turtle)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.DurationVar(&patternTimeout, "pattern-timeout", shacl.DefaultPatternTimeout, "time limit for one sh:pattern match, negative for none")

	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "inputs validated at once (default GOMAXPROCS)")
	rootCmd.Flags().BoolVar(&failOnViolation, "fail-on-violation", false, "exit with status 2 when a report does not conform")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// PersistentPostRun does not run when a command fails.
		if logger != nil {
			_ = logger.Sync()
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process status: 2 for
// non-conforming reports under --fail-on-violation, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errViolations):
		return 2
	default:
		return 1
	}
}
