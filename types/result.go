package types

import (
	"time"
)

// Measurement is one sample taken from a device endpoint.
type Measurement struct {
	// Timestamp is when the consumer dequeued the sample. It trails
	// the instant the value was produced by at most the queue latency.
	Timestamp time.Time `json:"timestamp"`

	// Value is the measured current, in amperes.
	Value float64 `json:"value"`

	// TestID identifies the test run this sample belongs to.
	TestID string `json:"test_id"`
}

// Measurements is the assembled sample set of one test run.
type Measurements []Measurement

// Values extracts the raw sample values.
func (m Measurements) Values() []float64 {
	vals := make([]float64, len(m))
	for i, meas := range m {
		vals[i] = meas.Value
	}
	return vals
}

// Metadata describes one completed test run.
type Metadata struct {
	TestID string `json:"test_id"`

	// Timestamp is the run time in RFC 3339 form. Keeping it as a
	// zero-padded string makes ISO-date range filters a plain
	// lexicographic comparison.
	Timestamp string `json:"timestamp"`

	DeviceKind string `json:"ammeter_type"`

	// TestDuration is the configured total duration, in seconds.
	TestDuration float64 `json:"test_duration"`

	// SamplingFrequency is the configured sample rate, in Hz.
	SamplingFrequency float64 `json:"sampling_frequency"`
}

// Date returns the ISO date portion (YYYY-MM-DD) of the timestamp.
func (m Metadata) Date() string {
	if len(m.Timestamp) < 10 {
		return m.Timestamp
	}
	return m.Timestamp[:10]
}

// TestResult is the persisted record of one test run: what was
// configured, every sample taken, and the statistical verdict.
// It is created once per run and read-only afterward.
type TestResult struct {
	Metadata     Metadata     `json:"metadata"`
	Measurements Measurements `json:"measurements"`
	Analysis     Analysis     `json:"analysis"`
}

// Timestamp returns the current UTC time in RFC 3339 form, suitable
// for Metadata.Timestamp.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
