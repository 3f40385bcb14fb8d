package ammetest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/electroqa/ammetest/types"
)

const (
	// CorruptPayload is the type-invalid value produced by a
	// corrupt_data fault.
	CorruptPayload = "CORRUPT_DATA_NOT_A_FLOAT"

	// OutOfRangeValue is the type-valid but domain-invalid reading
	// produced by an invalid_value fault.
	OutOfRangeValue = -999.99
)

// InjectorConfig configures synthetic fault injection.
type InjectorConfig struct {
	Enabled   bool    `yaml:"enabled"`
	ErrorRate float64 `yaml:"error_rate"`

	// FaultWeights maps fault kinds to non-negative relative
	// weights. Unrecognized kind names are dropped and the
	// remainder renormalized.
	FaultWeights map[types.FaultKind]float64 `yaml:"error_types"`
}

// Injector probabilistically replaces measurement values with fault
// outcomes. Deciding whether to fault and which fault to raise are
// separate draws, so the marginal rate and the conditional kind
// distribution can be validated independently.
type Injector struct {
	cfg InjectorConfig

	mu         sync.Mutex
	rng        *rand.Rand
	totalCalls int64
	injected   int64
}

// InjectorStats is a snapshot of injection counters. Counters measure
// calls, not faults; they advance even while injection is disabled.
type InjectorStats struct {
	TotalCalls     int64   `json:"total_calls"`
	ErrorsInjected int64   `json:"errors_injected"`
	ActualRate     float64 `json:"error_rate_actual"`
	ConfiguredRate float64 `json:"error_rate_configured"`
	Enabled        bool    `json:"enabled"`
}

// NewInjector returns an Injector using rng for its draws. A nil rng
// gets a time-seeded source; tests pass a seeded one.
func NewInjector(cfg InjectorConfig, rng *rand.Rand) *Injector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Injector{cfg: cfg, rng: rng}
}

// ShouldInject decides whether the current call gets a fault. It
// always advances the call counter, even when injection is disabled.
func (in *Injector) ShouldInject() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.totalCalls++
	if !in.cfg.Enabled {
		return false
	}
	return in.rng.Float64() < in.cfg.ErrorRate
}

// SelectFaultKind draws one fault kind using weighted random selection
// over the configured weights. Unrecognized kinds and non-positive
// weights are normalized out; if nothing usable remains, it falls back
// to the timeout fault rather than failing.
func (in *Injector) SelectFaultKind() types.FaultKind {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.selectFaultKindLocked()
}

func (in *Injector) selectFaultKindLocked() types.FaultKind {
	var (
		kinds   []types.FaultKind
		weights []float64
		total   float64
	)
	// Iterate in declaration order for a stable distribution walk.
	for _, kind := range types.FaultKinds {
		w, ok := in.cfg.FaultWeights[kind]
		if !ok || w <= 0 {
			continue
		}
		kinds = append(kinds, kind)
		weights = append(weights, w)
		total += w
	}
	if total == 0 {
		return types.FaultTimeout
	}

	draw := in.rng.Float64() * total
	for i, w := range weights {
		draw -= w
		if draw < 0 {
			return kinds[i]
		}
	}
	return kinds[len(kinds)-1]
}

// Apply passes value through unchanged unless an injection is due.
// An injected timeout or connection_refused fault is returned as a
// *types.SimulatedFault; empty_response yields nil, corrupt_data a
// non-numeric value, and invalid_value the OutOfRangeValue sentinel.
// Callers are expected to validate the returned reading.
func (in *Injector) Apply(value float64) (interface{}, error) {
	if !in.ShouldInject() {
		return value, nil
	}

	in.mu.Lock()
	in.injected++
	kind := in.selectFaultKindLocked()
	in.mu.Unlock()

	switch kind {
	case types.FaultTimeout:
		return nil, &types.SimulatedFault{Kind: kind, Message: "simulated measurement timeout"}
	case types.FaultConnectionRefused:
		return nil, &types.SimulatedFault{Kind: kind, Message: "simulated connection refused"}
	case types.FaultEmptyResponse:
		return nil, nil
	case types.FaultCorruptData:
		return CorruptPayload, nil
	case types.FaultInvalidValue:
		return OutOfRangeValue, nil
	}
	return value, nil
}

// Stats returns a snapshot of the injection counters.
func (in *Injector) Stats() InjectorStats {
	in.mu.Lock()
	defer in.mu.Unlock()

	actual := 0.0
	if in.totalCalls > 0 {
		actual = float64(in.injected) / float64(in.totalCalls)
	}
	return InjectorStats{
		TotalCalls:     in.totalCalls,
		ErrorsInjected: in.injected,
		ActualRate:     actual,
		ConfiguredRate: in.cfg.ErrorRate,
		Enabled:        in.cfg.Enabled,
	}
}
