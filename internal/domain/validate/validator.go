package validate

import (
	"context"
	"fmt"
	"sort"

	"github.com/mvaldez/orinup/internal/ports"
)

// CheckResult is the outcome of validating a capability set.
type CheckResult struct {
	// OK is true when every capability satisfied the assertion.
	OK bool
	// Unexpected lists capability names that violated the assertion,
	// sorted for stable reporting.
	Unexpected []string
}

// Validator asserts the presence or absence of capability sets on the
// provisioned system.
type Validator struct {
	logger ports.Logger
}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// WithLogger returns a copy using the given logger.
func (v *Validator) WithLogger(logger ports.Logger) *Validator {
	clone := *v
	clone.logger = logger
	return &clone
}

// AssertAbsent verifies that none of the capabilities exist. Any
// capability found present is reported in Unexpected. All capabilities
// are probed even after the first violation so the report is complete.
func (v *Validator) AssertAbsent(ctx context.Context, capabilities []Capability) (CheckResult, error) {
	return v.assert(ctx, capabilities, false)
}

// AssertPresent verifies that every capability exists. Any capability
// found missing is reported in Unexpected.
func (v *Validator) AssertPresent(ctx context.Context, capabilities []Capability) (CheckResult, error) {
	return v.assert(ctx, capabilities, true)
}

func (v *Validator) assert(ctx context.Context, capabilities []Capability, wantPresent bool) (CheckResult, error) {
	unexpected := make([]string, 0)
	for _, capability := range capabilities {
		if err := ctx.Err(); err != nil {
			return CheckResult{}, err
		}
		present, err := capability.Present(ctx)
		if err != nil {
			return CheckResult{}, fmt.Errorf("probing capability %s: %w", capability.Name(), err)
		}
		if present != wantPresent {
			unexpected = append(unexpected, capability.Name())
			v.debug(ctx, "capability violated assertion",
				ports.F("capability", capability.Name()),
				ports.F("present", present),
				ports.F("expected_present", wantPresent))
		}
	}
	sort.Strings(unexpected)
	return CheckResult{OK: len(unexpected) == 0, Unexpected: unexpected}, nil
}

func (v *Validator) debug(ctx context.Context, msg string, fields ...ports.Field) {
	if v.logger == nil {
		return
	}
	v.logger.Debug(ctx, msg, fields...)
}
