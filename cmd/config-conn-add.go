package cmd

import (
	"fmt"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical connection (warehouse or AWS credentials) for use by pipelines.`,
}

// dsnConnectionHelp holds the DSN form documented for each warehouse connection type.
var dsnConnectionHelp = []struct {
	connType string
	short    string
	form     string
}{
	{constants.ConnectionTypeRedshift, "Add an Amazon Redshift connection",
		"redshift://<user>:<pass>@<cluster-endpoint>:5439/<dbname>[?sslmode=require]"},
	{constants.ConnectionTypePostgres, "Add a PostgreSQL connection",
		"postgres://<user>:<pass>@<host>:5432/<dbname>[?sslmode=disable]"},
	{constants.ConnectionTypeSnowflake, "Add a Snowflake connection",
		"snowflake://<user>:<password>@<account>/<database-name>?schema=<schema>&warehouse=<warehouse>&role=<role>"},
	{constants.ConnectionTypeSqlServer, "Add a SQL Server connection",
		"sqlserver://<user>:<pass>@<host>/<dbname>[?<opt1>=<value1>&<opt2>=<value1>&...]"},
}

// newConfigConnAddDsnCmd returns a command that saves a DSN connection of type connType.
func newConfigConnAddDsnCmd(connType string, short string, form string) *cobra.Command {
	cfg := &actions.ConnectionConfig{}
	conn := &shared.DsnConnectionDetails{}
	c := &cobra.Command{
		Use:   connType,
		Short: short,
		Long: fmt.Sprintf(`Add a %v connection to the config store %q
by providing a DSN of the form:

%v
`, connType, config.Connections.FullPath, form),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Type = connType
			cfg.ConfigFile = getConnectionGetterSetter()
			cfg.ConnDetails = conn
			cmd.SilenceUsage = true
			return actions.RunConnectionAdd(cfg)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &conn.Dsn, "dsn", "", true, "")
	return c
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
	for _, h := range dsnConnectionHelp {
		configConnAddCmd.AddCommand(newConfigConnAddDsnCmd(h.connType, h.short, h.form))
	}
}
