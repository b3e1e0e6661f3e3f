package validator

import (
	"context"
	"sync/atomic"
)

// Action is the configure-then-run surface over Validator. Configure may be
// called again at any time: a successful call atomically replaces the
// validator used by later runs, a failed one keeps the previous validator.
// Runs already in flight finish with the validator they started with.
type Action struct {
	opts    []Option
	current atomic.Pointer[Validator]
}

// NewAction returns an unconfigured action. opts are applied on every
// Configure.
func NewAction(opts ...Option) *Action {
	return &Action{opts: opts}
}

// Configure builds a new validator from cfg and installs it.
func (a *Action) Configure(ctx context.Context, cfg Configuration) error {
	v, err := New(ctx, cfg, a.opts...)
	if err != nil {
		return err
	}
	a.current.Store(v)
	return nil
}

// Run validates data with the current validator.
func (a *Action) Run(ctx context.Context, data string) (string, error) {
	v := a.current.Load()
	if v == nil {
		return "", &NotConfiguredError{Op: "Run"}
	}
	return v.Run(ctx, data)
}

// Validator returns the current validator, nil before a successful
// Configure.
func (a *Action) Validator() *Validator { return a.current.Load() }
