package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	// Pipelines.
	"file": cliFlag{name: "file", shortHand: "f",
		desc: "File containing the pipeline definition (.yaml or .json). \n" +
			"Omit to use the built-in Sparkify pipeline"},
	"sql-file": cliFlag{name: "sql-file", shortHand: "q",
		desc: "Optional YAML file of named SQL statements that override the built-in Sparkify queries"},
	"logical-date": cliFlag{name: "logical-date", shortHand: "t",
		desc: "The logical date of the run as YYYY-MM-DD or RFC3339. \n" +
			"Omit to use the most recent tick of the pipeline schedule"},
	"param": cliFlag{name: "param", shortHand: "m",
		desc: "Extra template parameters as <key>=<value>, available to S3 key templates as ${<key>}"},
	"s3-preflight": cliFlag{name: "s3-preflight", shortHand: "k",
		desc: "List each S3 source path before COPY and warn when no objects are found"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print the pipeline definition. Optionally redirect this output \n" +
			"to a file for use with the \"run\" command"},
	"include-connections": cliFlag{name: "include-connections", shortHand: "I",
		desc: "Include connection details (with secrets masked) when exporting the pipeline"},
	// Sparkify pipeline settings.
	"dag-id": cliFlag{name: "dag-id", shortHand: "D",
		desc: "Name of the Sparkify pipeline"},
	"schedule": cliFlag{name: "schedule", shortHand: "",
		desc: "Cron schedule of the Sparkify pipeline"},
	"redshift-connection": cliFlag{name: "redshift-connection", shortHand: "r",
		desc: "Connection name of the warehouse"},
	"redshift-type": cliFlag{name: "redshift-type", shortHand: "T",
		desc: "Connection type of the warehouse: \"redshift | postgres | mock\""},
	"aws-connection": cliFlag{name: "aws-connection", shortHand: "A",
		desc: "Connection name of the AWS credentials used by COPY"},
	"s3-bucket": cliFlag{name: "s3-bucket", shortHand: "b",
		desc: "AWS S3 bucket holding the song and event JSON files"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region"},
	"log-data-key": cliFlag{name: "log-data-key", shortHand: "",
		desc: "S3 key prefix of the event log files; may contain run variables such as ${year} and ${month}"},
	"log-json-paths": cliFlag{name: "log-json-paths", shortHand: "",
		desc: "JSONPaths file used to COPY the event log files"},
	"song-data-key": cliFlag{name: "song-data-key", shortHand: "",
		desc: "S3 key prefix of the song files"},
	"song-json-option": cliFlag{name: "song-json-option", shortHand: "",
		desc: "JSON option used to COPY the song files"},
	"max-active-tasks": cliFlag{name: "max-active-tasks", shortHand: "M",
		desc: "Maximum number of tasks that run concurrently"},
	// Logging and the web service.
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"web-service": cliFlag{name: "web-service", shortHand: "w",
		desc: "Launch a web service to monitor the run"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between dumping task statistics (use 0 to disable)"},
	// Connections.
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Connection name referred to by pipelines"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connect string to parse"},
	"aws-access-key-id": cliFlag{name: "access-key-id", shortHand: "K",
		desc: "AWS IAM access key id (omit to use a profile or the AWS environment variables)"},
	"aws-secret-access-key": cliFlag{name: "secret-access-key", shortHand: "S",
		desc: "AWS IAM secret access key"},
	"aws-session-token": cliFlag{name: "session-token", shortHand: "",
		desc: "AWS session token for temporary credentials"},
	"aws-profile": cliFlag{name: "profile", shortHand: "P",
		desc: "AWS shared credentials profile"},
	"aws-region": cliFlag{name: "region", shortHand: "R",
		desc: "AWS region"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		if twelveFactorMode {
			*p = parseBool(sw.val)
		} else {
			defaultBool := parseBool(sw.val)
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(defaultBool))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *map[string]string:
		m, err := parseKeyValues(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be a list of <key>=<value>: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = m
		} else {
			c.Flags().StringToStringVarP(p, sw.name, sw.shortHand, m, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil {
			// Apply the default.
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		if err := fnGetConfig(s.name, &s.val); err != nil || s.val == "" { // if there was no key found...
			// Apply the default.
			s.val = defaultValue
		}
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// parseBool treats any value other than empty, "0" or "false" as true.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

// parseKeyValues converts "k1=v1,k2=v2" into a map.
func parseKeyValues(s string) (map[string]string, error) {
	m := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, kv := range strings.Split(s, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("bad key value pair %q", kv)
		}
		m[strings.TrimSpace(parts[0])] = parts[1]
	}
	return m, nil
}
