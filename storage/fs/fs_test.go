package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/electroqa/ammetest/types"
)

func specimenResult() types.TestResult {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return types.TestResult{
		Metadata: types.Metadata{
			TestID:            "abc-123",
			Timestamp:         "2026-08-30T12:00:00Z",
			DeviceKind:        "greenlee",
			TestDuration:      5,
			SamplingFrequency: 20,
		},
		Measurements: types.Measurements{
			{Timestamp: base, Value: 1.25, TestID: "abc-123"},
			{Timestamp: base.Add(50 * time.Millisecond), Value: 1.5, TestID: "abc-123"},
		},
		Analysis: types.Analysis{
			Mean:                 1.375,
			Median:               1.375,
			StdDev:               0.125,
			Min:                  1.25,
			Max:                  1.5,
			Skewness:             0,
			Kurtosis:             -2,
			ConfidenceInterval95: [2]float64{-0.213, 2.963},
			IsNormalDistribution: false,
			OutliersCount:        0,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	specimen := New(filepath.Join(t.TempDir(), "results"))
	want := specimenResult()

	if err := specimen.Save(want); err != nil {
		t.Fatalf("Expected no error from Save(), got: %v", err)
	}

	got, err := specimen.Load("abc-123")
	if err != nil {
		t.Fatalf("Expected no error from Load(), got: %v", err)
	}

	if got.Metadata != want.Metadata {
		t.Errorf("Metadata mismatch\nExpected %+v\nGot %+v", want.Metadata, got.Metadata)
	}
	if got.Analysis != want.Analysis {
		t.Errorf("Analysis mismatch\nExpected %+v\nGot %+v", want.Analysis, got.Analysis)
	}
	if len(got.Measurements) != len(want.Measurements) {
		t.Fatalf("Expected %d measurements, got %d", len(want.Measurements), len(got.Measurements))
	}
	for i := range want.Measurements {
		if !got.Measurements[i].Timestamp.Equal(want.Measurements[i].Timestamp) {
			t.Errorf("Measurement %d: timestamp mismatch", i)
		}
		if got.Measurements[i].Value != want.Measurements[i].Value {
			t.Errorf("Measurement %d: expected value %v, got %v", i, want.Measurements[i].Value, got.Measurements[i].Value)
		}
		if got.Measurements[i].TestID != want.Measurements[i].TestID {
			t.Errorf("Measurement %d: expected test id %q, got %q", i, want.Measurements[i].TestID, got.Measurements[i].TestID)
		}
	}
}

func TestLoadNotFound(t *testing.T) {
	specimen := New(t.TempDir())

	_, err := specimen.Load("missing")
	if err == nil {
		t.Fatal("Expected an error for a missing test id")
	}
	var nf *types.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected a *types.NotFoundError, got %T: %v", err, err)
	}
	if got, want := nf.TestID, "missing"; got != want {
		t.Errorf("Expected missing id %q, got %q", want, got)
	}
}

func TestListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	specimen := New(dir)

	if err := specimen.Save(specimenResult()); err != nil {
		t.Fatalf("Expected no error from Save(), got: %v", err)
	}

	// A truncated write, as left behind by a crashed run.
	corrupt := filepath.Join(dir, "def-456.json")
	if err := os.WriteFile(corrupt, []byte(`{"metadata": {"test_id": "def-`), 0644); err != nil {
		t.Fatalf("Cannot write corrupt file: %v", err)
	}
	// Non-JSON files are ignored outright.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644); err != nil {
		t.Fatalf("Cannot write stray file: %v", err)
	}

	results, err := specimen.List()
	if err != nil {
		t.Fatalf("Expected no error from List(), got: %v", err)
	}
	if got, want := len(results), 1; got != want {
		t.Fatalf("Expected %d result, got %d", want, got)
	}
	if got, want := results[0].Metadata.TestID, "abc-123"; got != want {
		t.Errorf("Expected test id %q, got %q", want, got)
	}
}

func TestListMissingDir(t *testing.T) {
	specimen := New(filepath.Join(t.TempDir(), "never-created"))

	results, err := specimen.List()
	if err != nil {
		t.Fatalf("Expected no error for a missing directory, got: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
