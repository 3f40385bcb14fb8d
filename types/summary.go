package types

// TestSummary is one flat row of a per-test comparison.
type TestSummary struct {
	TestID     string  `json:"test_id"`
	DeviceKind string  `json:"ammeter_type"`
	Timestamp  string  `json:"timestamp"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Median     float64 `json:"median"`
	Outliers   int     `json:"outliers"`
	IsNormal   bool    `json:"is_normal"`
}

// Comparison is the result of comparing an explicit list of tests.
type Comparison struct {
	TestCount int           `json:"test_count"`
	Tests     []TestSummary `json:"tests"`
}

// ReliabilitySummary aggregates a device kind's historical results.
type ReliabilitySummary struct {
	TestCount int     `json:"test_count"`
	AvgMean   float64 `json:"avg_mean"`
	AvgStdDev float64 `json:"avg_std_dev"`

	// StdDevOfMeans is the spread of per-test means, a consistency
	// measure across runs rather than within one run.
	StdDevOfMeans float64 `json:"std_dev_of_means"`

	AvgOutliers float64 `json:"avg_outliers"`

	// ReliabilityScore is in [0,100]; higher is better.
	ReliabilityScore float64 `json:"reliability_score"`
}
