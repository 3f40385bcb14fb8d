package ammetest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/electroqa/ammetest/types"
)

// DisableColor disables ANSI colors in rendered reports.
func DisableColor() {
	color.NoColor = true
}

// FormatResult returns a human-readable rendering of one test result.
func FormatResult(r *types.TestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s - test %s\n", strings.ToUpper(r.Metadata.DeviceKind), r.Metadata.TestID)
	fmt.Fprintf(&b, "  Samples: %d\n", len(r.Measurements))
	fmt.Fprintf(&b, "     Mean: %.4fA\n", r.Analysis.Mean)
	fmt.Fprintf(&b, "   Median: %.4fA\n", r.Analysis.Median)
	fmt.Fprintf(&b, "  Std Dev: %.4fA\n", r.Analysis.StdDev)
	fmt.Fprintf(&b, "      Min: %.4fA\n", r.Analysis.Min)
	fmt.Fprintf(&b, "      Max: %.4fA\n", r.Analysis.Max)
	fmt.Fprintf(&b, "   95%% CI: [%.4f, %.4f]\n",
		r.Analysis.ConfidenceInterval95[0], r.Analysis.ConfidenceInterval95[1])
	fmt.Fprintf(&b, " Skewness: %.4f\n", r.Analysis.Skewness)
	fmt.Fprintf(&b, " Kurtosis: %.4f\n", r.Analysis.Kurtosis)

	normality := color.YellowString("   Normal: no\n")
	if r.Analysis.IsNormalDistribution {
		normality = color.GreenString("   Normal: yes\n")
	}
	b.WriteString(normality)

	outliers := fmt.Sprintf(" Outliers: %d\n", r.Analysis.OutliersCount)
	if r.Analysis.OutliersCount > 0 {
		outliers = color.RedString(outliers)
	}
	b.WriteString(outliers)
	return b.String()
}

// SummaryReport renders every stored test grouped by device kind,
// with per-kind reliability scores and the overall winner.
func (c Comparator) SummaryReport() (string, error) {
	all, err := c.FindTests(Filter{})
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "No test results found.", nil
	}

	summaries, err := c.CompareByKind()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\n")
	b.WriteString("AMMETER TEST RESULTS SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "\nTotal tests: %d\n", len(all))

	kinds := make([]string, 0, len(summaries))
	for kind := range summaries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	b.WriteString("\nTests by ammeter type:\n")
	for _, kind := range kinds {
		fmt.Fprintf(&b, "  %s: %d tests\n", strings.ToUpper(kind), summaries[kind].TestCount)
	}

	b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
	b.WriteString("AMMETER TYPE COMPARISON\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, kind := range kinds {
		s := summaries[kind]
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(kind))
		fmt.Fprintf(&b, "  Average Mean Current: %.2fA\n", s.AvgMean)
		fmt.Fprintf(&b, "  Average Std Dev: %.2fA\n", s.AvgStdDev)
		fmt.Fprintf(&b, "  Consistency (std of means): %.2fA\n", s.StdDevOfMeans)
		fmt.Fprintf(&b, "  Average Outliers: %.1f\n", s.AvgOutliers)
		fmt.Fprintf(&b, "  Reliability Score: %.1f/100\n", s.ReliabilityScore)
	}

	best, bestSummary, err := c.BestKind()
	if err != nil {
		return "", err
	}
	b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
	b.WriteString(color.GreenString("MOST RELIABLE: %s (Score: %.1f/100)\n",
		strings.ToUpper(best), bestSummary.ReliabilityScore))
	b.WriteString(rule + "\n")
	return b.String(), nil
}
