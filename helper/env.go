package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	}
	if mandatory {
		return "", fmt.Errorf("environment variable %v is not set", k)
	}
	return "", nil
}

// ReadValueFromEnv will read the env var called name and populate the supplied val.
// If the env var is not set then return an error and leave val alone.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v == "" {
		return fmt.Errorf("value for environment variable %v not found", name)
	}
	*val = v
	return nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will return the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	if err := ReadValueFromEnv(name, &v); err != nil {
		v = defaultValue
	}
	return
}

func envVarStem(connectionName string) string {
	n := strings.ToUpper(strings.TrimSpace(connectionName))
	n = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(n)
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}

// GetDsnEnvVarName returns SP_<NAME>_DSN for the given connection.
func GetDsnEnvVarName(connectionName string) string {
	return envVarStem(connectionName) + "_DSN"
}

// AwsEnvVarNames are the environment variables holding AWS credentials for a named connection in twelveFactorMode.
type AwsEnvVarNames struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
	Region          string
}

// GetAwsEnvVarNames returns SP_<NAME>_AWS_ACCESS_KEY_ID and friends.
func GetAwsEnvVarNames(connectionName string) AwsEnvVarNames {
	s := envVarStem(connectionName)
	return AwsEnvVarNames{
		AccessKeyId:     s + "_AWS_ACCESS_KEY_ID",
		SecretAccessKey: s + "_AWS_SECRET_ACCESS_KEY",
		SessionToken:    s + "_AWS_SESSION_TOKEN",
		Profile:         s + "_AWS_PROFILE",
		Region:          s + "_AWS_REGION",
	}
}

// GetTypeEnvVarName returns SP_<NAME>_TYPE for the given connection.
func GetTypeEnvVarName(connectionName string) string {
	return envVarStem(connectionName) + "_TYPE"
}
