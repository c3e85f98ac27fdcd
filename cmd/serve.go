package cmd

import (
	"net"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service and listen for pipeline runs described in JSON",
	Long: `Start a web service and listen for pipeline runs described in JSON.

POST a pipeline definition to /runs to launch it, optionally with ?logicalDate=<date>.
Use GET /runs to list runs and /runs/<run-id>/status|stats|stop to manage them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupServeConfig()
		cmd.SilenceUsage = true
		return runWebServer()
	},
}

var serveConfig = actions.WebServerConfig{
	LogLevel:                  "info",
	Scheme:                    "http",
	Addr:                      net.IP{0, 0, 0, 0},
	Port:                      8080,
	StatsDumpFrequencySeconds: 5,
}

func setupServeConfig() {
	serveConfig.Connections = getConnectionLoader()
	serveConfig.StackDumpOnPanic = stackDumpOnPanic
}

func runWebServer() error {
	return actions.RunWebServer(&serveConfig)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "info", false, "")
	switches.addFlag(serveCmd, &serveConfig.StatsDumpFrequencySeconds, "stats", "5", false, "")
	switches.addFlag(serveCmd, &serveConfig.S3Preflight, "s3-preflight", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.SqlFile, "sql-file", "", false, "")
}
