package types

// Analysis holds the statistical verdict over one test run's samples.
// The descriptive fields (mean, median, std_dev, min, max) are only
// populated when their metric is in the analyzer's allow-list; the
// inferential fields are always computed.
type Analysis struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	// Skewness is the adjusted Fisher-Pearson coefficient.
	Skewness float64 `json:"skewness"`

	// Kurtosis is excess kurtosis (0 for a normal distribution).
	Kurtosis float64 `json:"kurtosis"`

	// ConfidenceInterval95 is the two-sided 95% t-interval for the
	// mean, [low, high].
	ConfidenceInterval95 [2]float64 `json:"confidence_interval_95"`

	// IsNormalDistribution is true when a normality test fails to
	// reject normality at p > 0.05. Failure to reject is not proof.
	IsNormalDistribution bool `json:"is_normal_distribution"`

	// OutliersCount is the number of samples outside the Tukey
	// fences. Outliers are counted, never removed.
	OutliersCount int `json:"outliers_count"`
}
