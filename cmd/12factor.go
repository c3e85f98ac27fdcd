package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/relloyd/sparkpipe/actions"
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/config"
	c "github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	loadDotEnv()
	setupTwelveFactorMode()
}

// loadDotEnv loads the file named by SP_DOTENV_FILE, or ./.env if it exists.
// Variables already present in the environment are not overwritten.
func loadDotEnv() {
	fileName := os.Getenv(c.EnvVarDotEnvFile)
	if fileName == "" {
		if _, err := os.Stat(".env"); err != nil { // if there is no default file...
			return
		}
		fileName = ".env"
	}
	if err := godotenv.Load(fileName); err != nil {
		fmt.Printf("unable to load environment file %q: %v\n", fileName, err)
	}
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(c.EnvVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		lambdaMode = strings.ToLower(mode) == c.TwelveFactorModeLambda
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarCommand    = c.EnvVarPrefix + "_" + "COMMAND"    // run|serve|dag
	envVarSubcommand = c.EnvVarPrefix + "_" + "SUBCOMMAND" // order|export when the command is dag
	envVarStackDump  = c.EnvVarPrefix + "_" + "STACK_DUMP"
	defaultCommand   = "run"
)

var (
	twelveFactorMode bool // true if os env var c.EnvVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var c.EnvVarTwelveFactorMode is set to lambda
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		c.EnvVarLogLevel: "",
		envVarStackDump:  "",
	}
)

type twelveFactorAction struct {
	setupFunc  func()
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	"run": {
		setupFunc:  setupRunConfig,
		runnerFunc: runPipeline,
	},
	"serve": {
		setupFunc:  setupServeConfig,
		runnerFunc: runWebServer,
	},
	"dag-order": {
		setupFunc:  setupDagConfig,
		runnerFunc: runDagOrder,
	},
	"dag-export": {
		setupFunc:  setupDagConfig,
		runnerFunc: runDagExport,
	},
}

func getConnectionHandler() actions.ConnectionHandler {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and %v instead)\n",
			c.EnvVarTwelveFactorMode,
			helper.GetTypeEnvVarName("<connection-name>"),
			helper.GetDsnEnvVarName("<connection-name>"))
		os.Exit(1)
	}
	return config.Connections
}

// getTwelveFactorActionKey forms the key into twelveFactorActions using command and subcommand.
func getTwelveFactorActionKey() string {
	cmd := twelveFactorVars[envVarCommand]
	if cmd == "" {
		cmd = defaultCommand
	}
	if sub := twelveFactorVars[envVarSubcommand]; sub != "" {
		return fmt.Sprintf("%v-%v", cmd, sub)
	}
	return cmd
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(c.EnvVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag.
	log := logger.MustNewLogger(c.AppName, logLevel, stackDumpOnPanic)
	log.Info("Sparkpipe is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars {
		twelveFactorVars[k] = os.Getenv(k)
		log.Debug(k, "=", twelveFactorVars[k])
	}
	if twelveFactorVars[envVarStackDump] != "" {
		stackDumpOnPanic = true
	}
	// Use command and subcommand to fetch the appropriate action.
	key := getTwelveFactorActionKey()
	a, ok := acts[key]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	a.setupFunc()
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// lambdaEvent is the optional payload of a Lambda invocation.
type lambdaEvent struct {
	LogicalDate string            `json:"logicalDate"`
	Params      map[string]string `json:"params"`
}

// getLambdaHandler returns the function handed to lambda.Start.
// Values in the event take priority over the environment for one invocation only:
// warm containers start each call from the values read at startup.
func getLambdaHandler(acts map[string]twelveFactorAction) func(ctx context.Context, ev lambdaEvent) error {
	baseDate := runConfig.LogicalDate
	baseParams := copyParams(runConfig.Params)
	return func(ctx context.Context, ev lambdaEvent) error {
		runConfig.LogicalDate = baseDate
		runConfig.Params = copyParams(baseParams)
		if ev.LogicalDate != "" {
			runConfig.LogicalDate = ev.LogicalDate
		}
		for k, v := range ev.Params {
			runConfig.Params[k] = v
		}
		return execute12FactorMode(acts)
	}
}

func copyParams(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type TwelveFactorConnections struct{} // implements interfaces in module, actions.

// GetConnectionType is for use when running in twelveFactorMode.
// It reads SP_<NAME>_TYPE, else infers aws when AWS variables exist for the connection,
// else infers the type from the scheme of SP_<NAME>_DSN.
func (t *TwelveFactorConnections) GetConnectionType(connectionName string) (connectionType string, err error) {
	if err = helper.ReadValueFromEnv(helper.GetTypeEnvVarName(connectionName), &connectionType); err == nil {
		return connectionType, nil
	}
	if hasAwsEnvVars(connectionName) {
		return c.ConnectionTypeAws, nil
	}
	var dsn string
	if err = helper.ReadValueFromEnv(helper.GetDsnEnvVarName(connectionName), &dsn); err != nil {
		return "", fmt.Errorf("connection %q is missing: set %v or %v", connectionName,
			helper.GetTypeEnvVarName(connectionName), helper.GetDsnEnvVarName(connectionName))
	}
	d := shared.DsnConnectionDetails{Dsn: dsn}
	scheme, err := d.GetScheme()
	if err != nil {
		return "", err
	}
	return actions.GetConnectionTypeForScheme(scheme)
}

// GetConnectionDetails builds connection details for connectionName from the environment.
// Warehouses use SP_<NAME>_DSN. AWS connections use SP_<NAME>_AWS_* variables and fall back
// to the standard AWS environment when none are set.
func (t *TwelveFactorConnections) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	vType, err := t.GetConnectionType(connectionName)
	if err != nil {
		return nil, err
	}
	connectionDetails := shared.ConnectionDetails{
		LogicalName: connectionName,
		Type:        vType,
		Data:        make(map[string]string),
	}
	var v actions.ConnectionValidator
	switch vType { // switch on the connection type...
	case c.ConnectionTypeMock:
		return &connectionDetails, nil
	case c.ConnectionTypeAws:
		n := helper.GetAwsEnvVarNames(connectionName)
		v = s3.AwsConnectionDetails{
			AccessKeyId:     os.Getenv(n.AccessKeyId),
			SecretAccessKey: os.Getenv(n.SecretAccessKey),
			SessionToken:    os.Getenv(n.SessionToken),
			Profile:         os.Getenv(n.Profile),
			Region:          os.Getenv(n.Region),
		}
	case c.ConnectionTypeNetezza:
		v = shared.NetezzaConnectionDetails{Dsn: os.Getenv(helper.GetDsnEnvVarName(connectionName))}
	default:
		v = &shared.DsnConnectionDetails{Dsn: os.Getenv(helper.GetDsnEnvVarName(connectionName))}
	}
	if err = v.Parse(); err != nil {
		return nil, fmt.Errorf("connection %q in the environment is invalid: %w", connectionName, err)
	}
	connectionDetails.Data = v.GetMap(connectionDetails.Data)
	return &connectionDetails, nil
}

// LoadConnection implements actions.ConnectionLoader.
func (t *TwelveFactorConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := t.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}

func hasAwsEnvVars(connectionName string) bool {
	n := helper.GetAwsEnvVarNames(connectionName)
	for _, k := range []string{n.AccessKeyId, n.SecretAccessKey, n.SessionToken, n.Profile, n.Region} {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}
