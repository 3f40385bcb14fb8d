package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/electroqa/ammetest"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ammetest",
	Short: "Emulate ammeters and score their measurement quality",
	Long: `Ammetest emulates current-measurement devices over TCP,
runs repeatable sampling campaigns against them with optional
synthetic fault injection, and scores measurement quality and
device reliability across stored test runs.

Ammetest looks for an ammetest.yaml file in the current
working directory by default. You can specify a different
file location using the --config/-c flag.`,
}

func loadConfig() *ammetest.Config {
	cfg, err := ammetest.LoadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "ammetest.yaml", "YAML config file")
}
