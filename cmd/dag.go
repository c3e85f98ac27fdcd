package cmd

import (
	"github.com/relloyd/sparkpipe/actions"
	"github.com/spf13/cobra"
)

var dagCmd = &cobra.Command{
	Use:   "dag",
	Short: "Inspect a pipeline without running it",
	Long: `Inspect a pipeline described in a YAML or JSON file, or the built-in Sparkify pipeline
when no file is supplied. No connections are opened.`,
}

var dagOrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the tasks in execution order with their upstream tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupDagConfig()
		cmd.SilenceUsage = true
		return runDagOrder()
	},
}

var dagExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the pipeline definition as YAML or JSON",
	Long: `Print the pipeline definition as YAML or JSON. Redirect the output to a file
for use with the "run" command or the web service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupDagConfig()
		cmd.SilenceUsage = true
		return runDagExport()
	},
}

var dagConfig = actions.DagConfig{}

func setupDagConfig() {
	dagConfig.Sparkify = sparkifyCfg
	dagConfig.Connections = getConnectionLoader()
}

func runDagOrder() error {
	return actions.RunDagOrder(&dagConfig)
}

func runDagExport() error {
	return actions.RunDagExport(&dagConfig)
}

func init() {
	rootCmd.AddCommand(dagCmd)
	dagCmd.AddCommand(dagOrderCmd)
	dagCmd.AddCommand(dagExportCmd)
	for _, c := range []*cobra.Command{dagOrderCmd, dagExportCmd} {
		c.Flags().SortFlags = false
		switches.addFlag(c, &dagConfig.PipelineFile, "file", "", false, "")
		_ = c.MarkFlagFilename("file", "json", "yaml", "yml")
		addSparkifyFlags(c)
	}
	switches.addFlag(dagExportCmd, &dagConfig.Format, "output", actions.OutputFormatYaml, false, "")
	switches.addFlag(dagExportCmd, &dagConfig.IncludeConnections, "include-connections", "", false, "")
}
