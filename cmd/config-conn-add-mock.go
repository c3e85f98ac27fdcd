package cmd

import (
	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/spf13/cobra"
)

var configConnAddMockCfg = &actions.ConnectionConfig{}

var configConnAddMockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Add an in-memory mock warehouse",
	Long: `Add a connection to an in-memory warehouse that understands the statements generated by
pipeline tasks. Use it to try out pipelines without a real warehouse.
Tables start empty and COPY finds no S3 objects, so loads insert no rows. SELECTs the mock
does not recognise also return no rows and are logged as a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddMockCfg.Type = constants.ConnectionTypeMock
		configConnAddMockCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddMockCfg.ConnDetails = actions.MockConnectionDetails{}
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddMockCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddMockCmd)
	configConnAddMockCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddMockCmd, &configConnAddMockCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddMockCmd, &configConnAddMockCfg.Force, "force-connection", "", false, "")
}
