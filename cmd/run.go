package cmd

import (
	"net"
	"strconv"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a pipeline once for a logical date",
	Long: `Run a pipeline described in a YAML or JSON file, or the built-in Sparkify pipeline
when no file is supplied. Tasks run in dependency order. The command fails when any task fails.
Optionally run a web server to monitor progress and health remotely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupRunConfig()
		cmd.SilenceUsage = true
		return runPipeline()
	},
}

var runConfig = actions.RunConfig{
	LogLevel: "info",
}

// sparkifyCfg holds the Sparkify settings shared by the run and dag commands.
var sparkifyCfg = actions.NewSparkifyConfig()

func setupRunConfig() {
	runConfig.Connections = getConnectionLoader()
	runConfig.StackDumpOnPanic = stackDumpOnPanic
	runConfig.Sparkify = sparkifyCfg
}

func runPipeline() error {
	return actions.RunPipeline(&runConfig, &serveConfig)
}

// addSparkifyFlags registers the flags that override the built-in Sparkify pipeline.
func addSparkifyFlags(c *cobra.Command) {
	switches.addFlag(c, &sparkifyCfg.DagID, "dag-id", sparkifyCfg.DagID, false, "")
	switches.addFlag(c, &sparkifyCfg.Schedule, "schedule", sparkifyCfg.Schedule, false, "")
	switches.addFlag(c, &sparkifyCfg.RedshiftConnection, "redshift-connection", sparkifyCfg.RedshiftConnection, false, "")
	switches.addFlag(c, &sparkifyCfg.RedshiftType, "redshift-type", sparkifyCfg.RedshiftType, false, "")
	switches.addFlag(c, &sparkifyCfg.AwsConnection, "aws-connection", sparkifyCfg.AwsConnection, false, "")
	switches.addFlag(c, &sparkifyCfg.S3Bucket, "s3-bucket", sparkifyCfg.S3Bucket, false, "")
	switches.addFlag(c, &sparkifyCfg.S3Region, "s3-region", sparkifyCfg.S3Region, false, "")
	switches.addFlag(c, &sparkifyCfg.LogDataKey, "log-data-key", sparkifyCfg.LogDataKey, false, "")
	switches.addFlag(c, &sparkifyCfg.LogJsonPaths, "log-json-paths", sparkifyCfg.LogJsonPaths, false, "")
	switches.addFlag(c, &sparkifyCfg.SongDataKey, "song-data-key", sparkifyCfg.SongDataKey, false, "")
	switches.addFlag(c, &sparkifyCfg.SongJsonOption, "song-json-option", sparkifyCfg.SongJsonOption, false, "")
	switches.addFlag(c, &sparkifyCfg.MaxActiveTasks, "max-active-tasks", strconv.Itoa(constants.DefaultMaxActiveTasks), false, "")
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SortFlags = false
	switches.addFlag(runCmd, &runConfig.PipelineFile, "file", "", false, "")
	_ = runCmd.MarkFlagFilename("file", "json", "yaml", "yml")
	switches.addFlag(runCmd, &runConfig.SqlFile, "sql-file", "", false, "")
	_ = runCmd.MarkFlagFilename("sql-file", "yaml", "yml")
	switches.addFlag(runCmd, &runConfig.LogicalDate, "logical-date", "", false, "")
	switches.addFlag(runCmd, &runConfig.Params, "param", "", false, "")
	switches.addFlag(runCmd, &runConfig.S3Preflight, "s3-preflight", "", false, "")
	addSparkifyFlags(runCmd)
	switches.addFlag(runCmd, &runConfig.WithWebService, "web-service", "", false, "")
	runCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(runCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(runCmd, &runConfig.LogLevel, "log-level", "info", false, "")
	switches.addFlag(runCmd, &runConfig.StatsDumpFrequencySeconds, "stats", "5", false, "")
}
