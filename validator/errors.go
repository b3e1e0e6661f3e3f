package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geoknoesis/shacl-go/rdf"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("validator: invalid configuration")
	// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("validator: unsupported format")
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("validator: malformed RDF")
	// ErrNotConfigured is matched by every *NotConfiguredError.
	ErrNotConfigured = errors.New("validator: not configured")
)

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Key    string // Configuration key, empty for the configuration as a whole
	Reason string
	Err    error // Underlying cause, if any
}

func (e *ConfigurationError) Error() string {
	var msg strings.Builder
	msg.WriteString("validator: configuration")
	if e.Key != "" {
		fmt.Fprintf(&msg, " key %q", e.Key)
	}
	msg.WriteString(": ")
	msg.WriteString(e.Reason)
	if e.Err != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Err.Error())
	}
	return msg.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnsupportedFormatError reports a format token that names no known format.
// The message lists every accepted token.
type UnsupportedFormatError struct {
	Key      string // Configuration key the token came from
	Token    string
	Accepted []string
}

func (e *UnsupportedFormatError) Error() string {
	prefix := "validator: unsupported format"
	if e.Key != "" {
		prefix += " for " + e.Key
	}
	return fmt.Sprintf("%s %q, choose one of (case insensitive): %s",
		prefix, e.Token, strings.Join(e.Accepted, ", "))
}

// Unwrap exposes rdf.ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Unwrap() error { return rdf.ErrUnsupportedFormat }

// Is lets errors.Is match ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// Stage names the pipeline step an input belongs to.
type Stage string

const (
	StageShape Stage = "shape"
	StageData  Stage = "data"
)

// ParseError reports inline content that is not valid RDF in the declared
// format. Err is usually an *rdf.ParseError.
type ParseError struct {
	Stage  Stage
	Format rdf.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("validator: %s is not valid %s: %v", e.Stage, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NotConfiguredError reports use of a validator that was never successfully
// configured.
type NotConfiguredError struct {
	Op string
}

func (e *NotConfiguredError) Error() string {
	return "validator: " + e.Op + " called before a successful configuration"
}

// Is lets errors.Is match ErrNotConfigured.
func (e *NotConfiguredError) Is(target error) bool { return target == ErrNotConfigured }
