package ammetest

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/electroqa/ammetest/types"
)

// Metric names accepted by the analyzer's allow-list.
const (
	MetricMean   = "mean"
	MetricMedian = "median"
	MetricStdDev = "std_dev"
	MetricMin    = "min"
	MetricMax    = "max"
)

// AllMetrics is the full descriptive-metric allow-list.
var AllMetrics = []string{MetricMean, MetricMedian, MetricStdDev, MetricMin, MetricMax}

// Analyzer computes the statistical verdict for a completed sample
// set. It is stateless; every call recomputes from scratch.
type Analyzer struct {
	// Metrics is the allow-list of descriptive metrics to populate.
	// A nil list means all of them. The inferential statistics are
	// always computed.
	Metrics []string
}

// Analyze computes descriptive and inferential statistics over the
// measurement values plus a Tukey-fence outlier census.
//
// Quantiles for the fences use stats.Percentile, which takes the
// midpoint of the two nearest ranks when the rank is fractional.
//
// Fewer than 2 samples cannot support the variance-dependent
// statistics and return types.ErrInsufficientSamples.
func (a Analyzer) Analyze(measurements types.Measurements) (types.Analysis, error) {
	values := measurements.Values()
	if len(values) < 2 {
		return types.Analysis{}, types.ErrInsufficientSamples
	}

	var out types.Analysis
	if a.wants(MetricMean) {
		out.Mean, _ = stats.Mean(values)
	}
	if a.wants(MetricMedian) {
		out.Median, _ = stats.Median(values)
	}
	if a.wants(MetricStdDev) {
		// Population std-dev, matching the persisted record format.
		out.StdDev, _ = stats.StandardDeviationPopulation(values)
	}
	if a.wants(MetricMin) {
		out.Min, _ = stats.Min(values)
	}
	if a.wants(MetricMax) {
		out.Max, _ = stats.Max(values)
	}

	mean, _ := stats.Mean(values)
	popStd, _ := stats.StandardDeviationPopulation(values)
	out.Skewness = skewness(values, mean, popStd)
	out.Kurtosis = kurtosis(values, mean, popStd)
	out.ConfidenceInterval95 = tInterval(values, mean)
	_, p := normality(values)
	out.IsNormalDistribution = p > 0.05
	out.OutliersCount = countOutliers(values)

	return out, nil
}

func (a Analyzer) wants(metric string) bool {
	if a.Metrics == nil {
		return true
	}
	for _, m := range a.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// tInterval is the two-sided 95% confidence interval for the mean via
// the Student's t-distribution with n-1 degrees of freedom and the
// standard error of the mean.
func tInterval(values []float64, mean float64) [2]float64 {
	n := float64(len(values))
	sampleStd, _ := stats.StandardDeviationSample(values)
	sem := sampleStd / math.Sqrt(n)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
	tCrit := tDist.Quantile(0.975)

	return [2]float64{mean - tCrit*sem, mean + tCrit*sem}
}

// countOutliers counts values outside the Tukey fences
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. Outliers are counted, not removed.
func countOutliers(values []float64) int {
	q1, err1 := stats.Percentile(values, 25)
	q3, err2 := stats.Percentile(values, 75)
	if err1 != nil || err2 != nil {
		// Too few samples for meaningful quartiles.
		return 0
	}

	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

// skewness is the adjusted Fisher-Pearson coefficient.
func skewness(values []float64, mean, stdDev float64) float64 {
	n := float64(len(values))
	if len(values) < 3 || stdDev == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		d := (v - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis is sample excess kurtosis (0 for a normal distribution).
func kurtosis(values []float64, mean, stdDev float64) float64 {
	n := float64(len(values))
	if len(values) < 4 || stdDev == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		d := (v - mean) / stdDev
		sum += d * d * d * d
	}
	g2 := sum/n - 3

	// Bias correction for the sample estimate.
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}

// normality runs D'Agostino's K-squared test for samples of 8 or
// more, falling back to a conservative skewness/kurtosis heuristic
// for smaller ones. The returned p-value is the probability of the
// observed moments under normality; p > 0.05 fails to reject.
func normality(values []float64) (normal bool, pValue float64) {
	if len(values) < 3 {
		return false, 0
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviationPopulation(values)
	if stdDev == 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return false, 0
	}

	if len(values) >= 8 {
		return dagostinoK2(values, mean, stdDev)
	}

	skew := skewness(values, mean, stdDev)
	kurt := kurtosis(values, mean, stdDev)
	stat := math.Abs(skew) + math.Abs(kurt)/2

	chi := distuv.ChiSquared{K: 2}
	p := 1 - chi.CDF(stat*stat)
	return p > 0.05, p
}

// dagostinoK2 combines D'Agostino's skewness transform with the
// Anscombe-Glynn kurtosis transform into the K-squared statistic,
// chi-squared with 2 degrees of freedom under the null.
func dagostinoK2(values []float64, mean, stdDev float64) (normal bool, pValue float64) {
	n := float64(len(values))

	// The K-squared transforms expect the plain (biased) sample
	// moments, not the adjusted coefficients.
	var m3, m4 float64
	for _, v := range values {
		d := (v - mean) / stdDev
		m3 += d * d * d
		m4 += d * d * d * d
	}
	g1 := m3 / n
	g2 := m4 / n

	// Skewness transform to Z1.
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 0 {
		return false, 0
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2.
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	if v <= 0 {
		return false, 0
	}
	x := (g2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return false, 0
	}
	den := 1 + x*math.Sqrt(2/(a-4))
	if den <= 0 {
		return false, 0
	}
	z2 := (1 - 2/(9*a) - math.Cbrt((1-2/a)/den)) * math.Sqrt(9*a/2)

	k2 := z1*z1 + z2*z2
	chi := distuv.ChiSquared{K: 2}
	p := 1 - chi.CDF(k2)
	return p > 0.05, p
}
