package cmd

import (
	"fmt"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnAddNetezzaCfg = &actions.ConnectionConfig{}
var netezzaConn = shared.NetezzaConnectionDetails{}

var configConnAddNetezzaCmd = &cobra.Command{
	Use:   "netezza",
	Short: "Add a Netezza connection",
	Long: fmt.Sprintf(`Add Netezza database connection to the config store %q
by providing a DSN of the form:

netezza://<user>/<pass>@//<host>:<port>/<dbname>[?<param1>=<value1>&<param2>=<value2>&...]

where the following parameter keys can be used:

* sslmode - Whether or not to use SSL (default is require)
* sslcert - PEM cert file location
* sslkey - PEM key file location
* sslrootcert - The location of the root certificate in PEM format
* securityLevel - The connection security level

Please refer to this documentation for reference:

https://pkg.go.dev/github.com/IBM/nzgo

Netezza cannot COPY from S3, so use it with SqlExec, LoadFact, LoadDimension and DataQuality tasks only.
`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddNetezzaCfg.Type = constants.ConnectionTypeNetezza
		configConnAddNetezzaCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddNetezzaCfg.ConnDetails = netezzaConn
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddNetezzaCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddNetezzaCmd)
	configConnAddNetezzaCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddNetezzaCmd, &configConnAddNetezzaCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddNetezzaCmd, &configConnAddNetezzaCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddNetezzaCmd, &netezzaConn.Dsn, "dsn", "", true, "")
}
