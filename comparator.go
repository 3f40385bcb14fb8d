package ammetest

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/electroqa/ammetest/types"
)

// ScoreConfig carries the reliability-score policy constants. The
// defaults are policy, not derived: two independent penalty terms,
// each capped, rewarding low dispersion and few outliers.
type ScoreConfig struct {
	StdDevDivisor float64
	OutlierWeight float64
	PenaltyCap    float64
}

// DefaultScoreConfig matches the historical scoring:
// 100 - min(avg_std_dev/10, 50) - min(avg_outliers*5, 50).
var DefaultScoreConfig = ScoreConfig{
	StdDevDivisor: 10,
	OutlierWeight: 5,
	PenaltyCap:    50,
}

// Score computes the bounded [0,100] reliability score.
func (sc ScoreConfig) Score(avgStdDev, avgOutliers float64) float64 {
	stdPenalty := avgStdDev / sc.StdDevDivisor
	if stdPenalty > sc.PenaltyCap {
		stdPenalty = sc.PenaltyCap
	}
	outlierPenalty := avgOutliers * sc.OutlierWeight
	if outlierPenalty > sc.PenaltyCap {
		outlierPenalty = sc.PenaltyCap
	}

	score := 100 - stdPenalty - outlierPenalty
	if score < 0 {
		return 0
	}
	return score
}

// Filter restricts a result scan. Zero-valued fields match anything.
// Dates are inclusive ISO dates (YYYY-MM-DD); since the persisted
// timestamps are zero-padded RFC 3339 strings, the comparison is
// plain lexicographic.
type Filter struct {
	Kind     string
	FromDate string
	ToDate   string
}

func (f Filter) matches(r types.TestResult) bool {
	if f.Kind != "" && r.Metadata.DeviceKind != f.Kind {
		return false
	}
	date := r.Metadata.Date()
	if f.FromDate != "" && date < f.FromDate {
		return false
	}
	if f.ToDate != "" && date > f.ToDate {
		return false
	}
	return true
}

// Comparator aggregates persisted test results into per-kind
// reliability scores and rankings.
type Comparator struct {
	// Results is where persisted TestResults come from.
	Results ResultReader

	// Score overrides the scoring policy; the zero value means
	// DefaultScoreConfig.
	Score ScoreConfig
}

func (c Comparator) scoring() ScoreConfig {
	if c.Score == (ScoreConfig{}) {
		return DefaultScoreConfig
	}
	return c.Score
}

// FindTests returns the stored results matching f, newest first.
func (c Comparator) FindTests(f Filter) ([]types.TestResult, error) {
	all, err := c.Results.List()
	if err != nil {
		return nil, errors.Wrap(err, "scanning results")
	}

	var matched []types.TestResult
	for _, r := range all {
		if f.matches(r) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Metadata.Timestamp > matched[j].Metadata.Timestamp
	})
	return matched, nil
}

// CompareTests returns a flat per-test summary for an explicit list of
// test ids. A missing id is a hard *types.NotFoundError.
func (c Comparator) CompareTests(testIDs []string) (types.Comparison, error) {
	comparison := types.Comparison{
		TestCount: len(testIDs),
		Tests:     make([]types.TestSummary, 0, len(testIDs)),
	}

	for _, id := range testIDs {
		result, err := c.Results.Load(id)
		if err != nil {
			return types.Comparison{}, err
		}
		comparison.Tests = append(comparison.Tests, types.TestSummary{
			TestID:     id,
			DeviceKind: result.Metadata.DeviceKind,
			Timestamp:  result.Metadata.Timestamp,
			Mean:       result.Analysis.Mean,
			StdDev:     result.Analysis.StdDev,
			Median:     result.Analysis.Median,
			Outliers:   result.Analysis.OutliersCount,
			IsNormal:   result.Analysis.IsNormalDistribution,
		})
	}
	return comparison, nil
}

// CompareByKind groups all discovered tests by device kind and
// aggregates each group into a ReliabilitySummary.
func (c Comparator) CompareByKind() (map[string]types.ReliabilitySummary, error) {
	all, err := c.FindTests(Filter{})
	if err != nil {
		return nil, err
	}

	byKind := make(map[string][]types.TestResult)
	for _, r := range all {
		kind := r.Metadata.DeviceKind
		byKind[kind] = append(byKind[kind], r)
	}

	sc := c.scoring()
	summaries := make(map[string]types.ReliabilitySummary, len(byKind))
	for kind, tests := range byKind {
		means := make([]float64, len(tests))
		stdDevs := make([]float64, len(tests))
		outliers := make([]float64, len(tests))
		for i, t := range tests {
			means[i] = t.Analysis.Mean
			stdDevs[i] = t.Analysis.StdDev
			outliers[i] = float64(t.Analysis.OutliersCount)
		}

		avgMean, _ := stats.Mean(means)
		avgStdDev, _ := stats.Mean(stdDevs)
		// Spread of per-test means: consistency across runs, not
		// within one run.
		stdDevOfMeans, _ := stats.StandardDeviationPopulation(means)
		avgOutliers, _ := stats.Mean(outliers)

		summaries[kind] = types.ReliabilitySummary{
			TestCount:        len(tests),
			AvgMean:          avgMean,
			AvgStdDev:        avgStdDev,
			StdDevOfMeans:    stdDevOfMeans,
			AvgOutliers:      avgOutliers,
			ReliabilityScore: sc.Score(avgStdDev, avgOutliers),
		}
	}
	return summaries, nil
}

// BestKind returns the device kind with the highest reliability score.
// Exact ties go to the lexicographically smallest kind name.
func (c Comparator) BestKind() (string, types.ReliabilitySummary, error) {
	summaries, err := c.CompareByKind()
	if err != nil {
		return "", types.ReliabilitySummary{}, err
	}
	if len(summaries) == 0 {
		return "", types.ReliabilitySummary{}, errors.New("no test results found")
	}

	kinds := make([]string, 0, len(summaries))
	for kind := range summaries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	best := kinds[0]
	for _, kind := range kinds[1:] {
		if summaries[kind].ReliabilityScore > summaries[best].ReliabilityScore {
			best = kind
		}
	}
	return best, summaries[best], nil
}
