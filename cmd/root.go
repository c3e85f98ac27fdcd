package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-02T03:04+0000"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "sp",
	Short: "Sparkpipe runs batch ELT pipelines against a data warehouse",
	Long: `Sparkpipe runs batch ELT pipelines against a data warehouse. Stage JSON files from S3,
load fact and dimension tables with SQL, then check the results with data quality tests.
Run the built-in Sparkify star-schema pipeline or describe your own in YAML or JSON.
Start an HTTP server to launch and monitor runs via a RESTful API.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(getLambdaHandler(twelveFactorActions))
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode prints the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
