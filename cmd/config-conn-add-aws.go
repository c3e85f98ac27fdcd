package cmd

import (
	"fmt"

	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/spf13/cobra"
)

var configConnAddAwsCfg = &actions.ConnectionConfig{}
var awsConn = s3.AwsConnectionDetails{}

var configConnAddAwsCmd = &cobra.Command{
	Use:   "aws",
	Short: "Add AWS credentials",
	Long: fmt.Sprintf(`Add AWS credentials to the config store %q
for use by COPY statements that load JSON from S3.

Supply static keys, or a shared credentials profile, or neither to use the
standard AWS environment variables at run time. Static keys take priority.`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddAwsCfg.Type = constants.ConnectionTypeAws
		configConnAddAwsCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddAwsCfg.ConnDetails = awsConn
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddAwsCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddAwsCmd)
	configConnAddAwsCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddAwsCmd, &configConnAddAwsCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddAwsCmd, &configConnAddAwsCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &awsConn.AccessKeyId, "aws-access-key-id", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &awsConn.SecretAccessKey, "aws-secret-access-key", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &awsConn.SessionToken, "aws-session-token", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &awsConn.Profile, "aws-profile", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &awsConn.Region, "aws-region", "", false, "")
}
