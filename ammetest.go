// Package ammetest emulates current-measurement devices over TCP,
// drives repeatable sampling campaigns against them, injects
// configurable synthetic faults, and produces statistical verdicts
// about measurement quality and device reliability.
package ammetest

import (
	"context"

	"github.com/google/uuid"

	"github.com/electroqa/ammetest/types"
)

// Runner drives one full test: collect, analyze, persist.
type Runner struct {
	// Collector runs the sampling session.
	Collector *Collector

	// Analyzer computes the statistical verdict.
	Analyzer Analyzer

	// Storage persists completed results. Optional; when nil the
	// result is only returned.
	Storage ResultStorage
}

// Run executes one complete test against the named device kind and
// returns the assembled result. The test id is a fresh UUID.
func (r *Runner) Run(ctx context.Context, kind string) (*types.TestResult, error) {
	testID := uuid.New().String()

	measurements, err := r.Collector.Collect(ctx, kind, testID)
	if err != nil {
		return nil, err
	}

	analysis, err := r.Analyzer.Analyze(measurements)
	if err != nil {
		return nil, err
	}

	result := &types.TestResult{
		Metadata: types.Metadata{
			TestID:            testID,
			Timestamp:         types.Timestamp(),
			DeviceKind:        kind,
			TestDuration:      r.Collector.Sampling.DurationSeconds,
			SamplingFrequency: r.Collector.Sampling.FrequencyHz,
		},
		Measurements: measurements,
		Analysis:     analysis,
	}

	if r.Storage != nil {
		if err := r.Storage.Save(*result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// RunAll executes one test per kind, sequentially; the emulated
// endpoints serve one client at a time. Results for the kinds that
// succeeded are returned alongside any per-kind errors.
func (r *Runner) RunAll(ctx context.Context, kinds []string) ([]types.TestResult, error) {
	results := make([]types.TestResult, 0, len(kinds))
	errs := make(types.Errors, len(kinds))

	for i, kind := range kinds {
		result, err := r.Run(ctx, kind)
		if err != nil {
			errs[i] = err
			continue
		}
		results = append(results, *result)
	}

	if !errs.Empty() {
		return results, errs
	}
	return results, nil
}
