package ammetest

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/electroqa/ammetest/types"
)

func TestShouldInjectDisabled(t *testing.T) {
	in := NewInjector(InjectorConfig{
		Enabled:   false,
		ErrorRate: 1.0,
		FaultWeights: map[types.FaultKind]float64{
			types.FaultTimeout: 1.0,
		},
	}, rand.New(rand.NewSource(1)))

	for i := 0; i < 1000; i++ {
		if in.ShouldInject() {
			t.Fatal("ShouldInject returned true while disabled")
		}
	}

	// Counters measure calls, not faults.
	stats := in.Stats()
	if got, want := stats.TotalCalls, int64(1000); got != want {
		t.Errorf("Expected TotalCalls=%d, got %d", want, got)
	}
	if got, want := stats.ErrorsInjected, int64(0); got != want {
		t.Errorf("Expected ErrorsInjected=%d, got %d", want, got)
	}
	if got, want := stats.ActualRate, 0.0; got != want {
		t.Errorf("Expected ActualRate=%v, got %v", want, got)
	}
}

func TestInjectionRate(t *testing.T) {
	const (
		rate = 0.1
		n    = 20000
	)
	in := NewInjector(InjectorConfig{
		Enabled:   true,
		ErrorRate: rate,
		FaultWeights: map[types.FaultKind]float64{
			types.FaultTimeout: 1.0,
		},
	}, rand.New(rand.NewSource(42)))

	injected := 0
	for i := 0; i < n; i++ {
		if in.ShouldInject() {
			injected++
		}
	}

	observed := float64(injected) / n
	// Within 3 standard errors of the binomial estimate.
	tolerance := 3 * math.Sqrt(rate*(1-rate)/n)
	if math.Abs(observed-rate) > tolerance {
		t.Errorf("Observed rate %v outside tolerance %v of configured rate %v", observed, tolerance, rate)
	}
}

func TestFaultKindDistribution(t *testing.T) {
	weights := map[types.FaultKind]float64{
		types.FaultTimeout:           0.3,
		types.FaultCorruptData:       0.4,
		types.FaultConnectionRefused: 0.1,
		types.FaultEmptyResponse:     0.1,
		types.FaultInvalidValue:      0.1,
		// Unrecognized kinds are normalized out.
		types.FaultKind("bogus"): 5.0,
	}
	in := NewInjector(InjectorConfig{
		Enabled:      true,
		ErrorRate:    1.0,
		FaultWeights: weights,
	}, rand.New(rand.NewSource(7)))

	const n = 20000
	counts := make(map[types.FaultKind]int)
	for i := 0; i < n; i++ {
		counts[in.SelectFaultKind()]++
	}

	if got := counts[types.FaultKind("bogus")]; got != 0 {
		t.Errorf("Unrecognized kind was drawn %d times", got)
	}

	for _, kind := range types.FaultKinds {
		want := weights[kind]
		observed := float64(counts[kind]) / n
		// Four standard errors: five kinds are checked at once.
		tolerance := 4 * math.Sqrt(want*(1-want)/n)
		if math.Abs(observed-want) > tolerance {
			t.Errorf("Kind %s: observed %v outside tolerance %v of weight %v", kind, observed, tolerance, want)
		}
	}
}

func TestSelectFaultKindEmptyWeights(t *testing.T) {
	in := NewInjector(InjectorConfig{
		Enabled:   true,
		ErrorRate: 1.0,
		FaultWeights: map[types.FaultKind]float64{
			types.FaultKind("bogus"): 1.0,
		},
	}, rand.New(rand.NewSource(1)))

	// Nothing usable remains after normalization; the injector falls
	// back to the timeout fault.
	if got, want := in.SelectFaultKind(), types.FaultTimeout; got != want {
		t.Errorf("Expected fallback kind %s, got %s", want, got)
	}
}

func TestApplyOutcomes(t *testing.T) {
	apply := func(kind types.FaultKind) (interface{}, error) {
		in := NewInjector(InjectorConfig{
			Enabled:      true,
			ErrorRate:    1.0,
			FaultWeights: map[types.FaultKind]float64{kind: 1.0},
		}, rand.New(rand.NewSource(3)))
		return in.Apply(1.5)
	}

	for _, kind := range []types.FaultKind{types.FaultTimeout, types.FaultConnectionRefused} {
		_, err := apply(kind)
		if err == nil {
			t.Fatalf("Expected an error for kind %s", kind)
		}
		var sf *types.SimulatedFault
		if !errors.As(err, &sf) {
			t.Fatalf("Expected a *types.SimulatedFault for kind %s, got %T", kind, err)
		}
		if got, want := sf.Kind, kind; got != want {
			t.Errorf("Expected fault kind %s, got %s", want, got)
		}
	}

	reading, err := apply(types.FaultEmptyResponse)
	if err != nil {
		t.Errorf("Didn't expect an error: %v", err)
	}
	if reading != nil {
		t.Errorf("Expected nil reading, got %v", reading)
	}

	reading, err = apply(types.FaultCorruptData)
	if err != nil {
		t.Errorf("Didn't expect an error: %v", err)
	}
	if got, want := reading, interface{}(CorruptPayload); got != want {
		t.Errorf("Expected reading %v, got %v", want, got)
	}

	reading, err = apply(types.FaultInvalidValue)
	if err != nil {
		t.Errorf("Didn't expect an error: %v", err)
	}
	if got, want := reading, interface{}(OutOfRangeValue); got != want {
		t.Errorf("Expected reading %v, got %v", want, got)
	}
}

func TestApplyPassThrough(t *testing.T) {
	in := NewInjector(InjectorConfig{
		Enabled:   true,
		ErrorRate: 0,
		FaultWeights: map[types.FaultKind]float64{
			types.FaultTimeout: 1.0,
		},
	}, rand.New(rand.NewSource(5)))

	reading, err := in.Apply(2.75)
	if err != nil {
		t.Errorf("Didn't expect an error: %v", err)
	}
	if got, want := reading, interface{}(2.75); got != want {
		t.Errorf("Expected reading %v, got %v", want, got)
	}
}

func TestInjectorStats(t *testing.T) {
	in := NewInjector(InjectorConfig{
		Enabled:   true,
		ErrorRate: 1.0,
		FaultWeights: map[types.FaultKind]float64{
			types.FaultInvalidValue: 1.0,
		},
	}, rand.New(rand.NewSource(9)))

	for i := 0; i < 50; i++ {
		in.Apply(1.0)
	}

	stats := in.Stats()
	if got, want := stats.TotalCalls, int64(50); got != want {
		t.Errorf("Expected TotalCalls=%d, got %d", want, got)
	}
	if got, want := stats.ErrorsInjected, int64(50); got != want {
		t.Errorf("Expected ErrorsInjected=%d, got %d", want, got)
	}
	if got, want := stats.ActualRate, 1.0; got != want {
		t.Errorf("Expected ActualRate=%v, got %v", want, got)
	}
	if got, want := stats.ConfiguredRate, 1.0; got != want {
		t.Errorf("Expected ConfiguredRate=%v, got %v", want, got)
	}
	if !stats.Enabled {
		t.Error("Expected Enabled=true")
	}
}
