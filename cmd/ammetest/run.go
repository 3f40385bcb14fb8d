package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/electroqa/ammetest"
	"github.com/electroqa/ammetest/storage/fs"
)

var storeResults bool

var runCmd = &cobra.Command{
	Use:   "run [kind...]",
	Short: "Run a sampling test against emulated devices",
	Long: `The run subcommand executes one full test per named device
kind: it collects the configured number of samples at the
configured rate, optionally perturbed by the fault injector,
analyzes them, and prints the statistical verdict.

With no arguments every configured kind is tested. Use
--store to persist results to the configured save path.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		kinds := args
		if len(kinds) == 0 {
			for kind := range cfg.Ammeters {
				kinds = append(kinds, kind)
			}
		}

		runner := &ammetest.Runner{
			Collector: &ammetest.Collector{
				Injector: ammetest.NewInjector(cfg.ErrorSimulation, nil),
				Devices:  cfg.Ammeters,
				Sampling: cfg.Testing.Sampling,
			},
			Analyzer: ammetest.Analyzer{Metrics: cfg.Analysis.StatisticalMetrics},
		}
		if storeResults {
			if cfg.ResultManagement.SavePath == "" {
				log.Fatal("no save_path configured")
			}
			runner.Storage = fs.New(cfg.ResultManagement.SavePath)
		}

		results, err := runner.RunAll(context.Background(), kinds)
		for _, result := range results {
			fmt.Println(ammetest.FormatResult(&result))
		}
		if err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&storeResults, "store", false, "Store results")
	rootCmd.AddCommand(runCmd)
}
