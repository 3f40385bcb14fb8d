package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/electroqa/ammetest"
	"github.com/electroqa/ammetest/storage/fs"
)

var (
	compareKind string
	compareFrom string
	compareTo   string
)

var compareCmd = &cobra.Command{
	Use:   "compare [test_id...]",
	Short: "Compare stored test results",
	Long: `The compare subcommand reads stored test results and prints
either a summary report across all device kinds (the default)
or, when explicit test ids are given, a flat per-test
comparison.

Use --type and --from/--to to restrict the listing that the
summary report is built from; dates are inclusive ISO dates
(YYYY-MM-DD).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.ResultManagement.SavePath == "" {
			log.Fatal("no save_path configured")
		}
		comparator := ammetest.Comparator{Results: fs.New(cfg.ResultManagement.SavePath)}

		if len(args) > 0 {
			comparison, err := comparator.CompareTests(args)
			if err != nil {
				log.Fatal(err)
			}
			for _, t := range comparison.Tests {
				fmt.Printf("%s  %-10s  mean=%.4fA  std=%.4f  median=%.4f  outliers=%d  normal=%v\n",
					t.TestID, t.DeviceKind, t.Mean, t.StdDev, t.Median, t.Outliers, t.IsNormal)
			}
			return
		}

		if compareKind != "" || compareFrom != "" || compareTo != "" {
			tests, err := comparator.FindTests(ammetest.Filter{
				Kind:     compareKind,
				FromDate: compareFrom,
				ToDate:   compareTo,
			})
			if err != nil {
				log.Fatal(err)
			}
			for _, t := range tests {
				fmt.Printf("%s  %-10s  %s  mean=%.4fA\n",
					t.Metadata.TestID, t.Metadata.DeviceKind, t.Metadata.Timestamp, t.Analysis.Mean)
			}
			return
		}

		report, err := comparator.SummaryReport()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(report)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareKind, "type", "", "Filter by device kind")
	compareCmd.Flags().StringVar(&compareFrom, "from", "", "Earliest ISO date, inclusive")
	compareCmd.Flags().StringVar(&compareTo, "to", "", "Latest ISO date, inclusive")
	rootCmd.AddCommand(compareCmd)
}
