package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/config"
	"github.com/spf13/cobra"
)

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config store %q
by printing them all to STDOUT with passwords and secrets masked`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return actions.RunConnectionList(&actions.ConnectionListConfig{ConfigFile: config.Connections, Out: os.Stdout})
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
}
