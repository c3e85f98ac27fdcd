package actions

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkpipe/config"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter `errorTxt:"connections config file" mandatory:"yes"`
	LogicalName string                 `errorTxt:"connection name" mandatory:"yes"`
	Type        string
	ConnDetails ConnectionValidator // type in (DsnConnectionDetails, NetezzaConnectionDetails, AwsConnectionDetails, MockConnectionDetails)
	Force       bool
	Out         io.Writer
}

type ConnectionListConfig struct {
	ConfigFile ConnectionLister `errorTxt:"connections config file" mandatory:"yes"`
	Out        io.Writer        `errorTxt:"output writer" mandatory:"yes"`
}

// MockConnectionDetails validates connections of type mock, which carry no data.
type MockConnectionDetails struct{}

func (MockConnectionDetails) Parse() error { return nil }

func (MockConnectionDetails) GetMap(m map[string]string) map[string]string { return m }

func (MockConnectionDetails) GetScheme() (string, error) { return constants.ConnectionTypeMock, nil }

// acceptedSchemes lists the DSN schemes allowed for each connection type.
var acceptedSchemes = map[string][]string{
	constants.ConnectionTypeRedshift:  {"redshift", "rs", "postgres", "postgresql", "pg"},
	constants.ConnectionTypePostgres:  {"postgres", "postgresql", "pg", "pgsql"},
	constants.ConnectionTypeSnowflake: {"snowflake", "sf"},
	constants.ConnectionTypeSqlServer: {"sqlserver", "mssql", "ms"},
	constants.ConnectionTypeNetezza:   {constants.ConnectionTypeNetezza},
	constants.ConnectionTypeAws:       {constants.ConnectionTypeAws},
	constants.ConnectionTypeMock:      {constants.ConnectionTypeMock},
}

// GetSupportedConnectionTypes returns the sorted connection types that can be added.
func GetSupportedConnectionTypes() []string {
	s := make([]string, 0, len(acceptedSchemes))
	for k := range acceptedSchemes {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

func isAcceptedScheme(connectionType string, scheme string) bool {
	for _, s := range acceptedSchemes[connectionType] {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// out returns w or STDOUT when w is nil.
func out(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	// Setup the basics ready to be persisted below.
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if cfg.ConnDetails == nil {
		return errors.New("missing connection details")
	}
	// Validate connection name.
	if strings.Contains(cfg.LogicalName, ".") {
		return fmt.Errorf("connection name cannot contain period characters '.'")
	}
	if _, ok := acceptedSchemes[cfg.Type]; !ok {
		return fmt.Errorf("unsupported connection type %q, please use one of these: %v", cfg.Type, strings.Join(GetSupportedConnectionTypes(), ", "))
	}
	// Validate the details based on connection type.
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	scheme, err := cfg.ConnDetails.GetScheme()
	if err != nil {
		return err
	}
	if !isAcceptedScheme(cfg.Type, scheme) {
		return fmt.Errorf("scheme %q is not valid for a %v connection, please use one of these: %v", scheme, cfg.Type, strings.Join(acceptedSchemes[cfg.Type], ", "))
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		var keyNotFound config.KeyNotFoundError
		if !errors.As(err, &keyNotFound) { // if the error is real...
			return err
		}
	} else if tmpConn.LogicalName != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	// Set config (creates the file if missing).
	err = cfg.ConfigFile.Set(cfg.LogicalName, &connection)
	if err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Fprintf(out(cfg.Out), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	err := cfg.ConfigFile.Delete(cfg.LogicalName)
	if err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Fprintf(out(cfg.Out), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints every saved connection with secrets redacted.
func RunConnectionList(cfg *ConnectionListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(cfg.Out, "No connections found")
		return nil
	}
	for _, k := range keys {
		d, err := cfg.ConfigFile.GetConnectionDetails(k)
		if err != nil {
			return errors.Wrapf(err, "unable to read connection %q", k)
		}
		fmt.Fprintf(cfg.Out, "%v:\n%v\n", k, d)
	}
	return nil
}

// GetConnectionTypeForScheme returns the first supported connection type, in sorted order, that accepts scheme.
func GetConnectionTypeForScheme(scheme string) (string, error) {
	for _, t := range GetSupportedConnectionTypes() {
		if isAcceptedScheme(t, scheme) {
			return t, nil
		}
	}
	return "", fmt.Errorf("no connection type accepts scheme %q", scheme)
}
