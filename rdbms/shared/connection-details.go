package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/sparkpipe/constants"
	"github.com/xo/dburl"
)

// secretDataKeys are the keys in ConnectionDetails.Data that String() never prints.
var secretDataKeys = map[string]struct{}{
	"password":        {},
	"secretAccessKey": {},
	"sessionToken":    {},
}

// ConnectionDetails is intended to hold credentials for a logical connection.
// Warehouse connections hold a "dsn" in Data; aws connections hold access keys or a profile.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"connection type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"connection logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := []string{fmt.Sprintf("  type = %v", c.Type)}
	if v, ok := c.Data[DefaultDsnConnectionKeyNames.Dsn]; ok { // if there's a DSN...
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(c.Type, v)))
		return strings.Join(x, "\n")
	}
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		if _, secret := secretDataKeys[k]; secret {
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// RedactDsn removes the password from dsn.
// A DSN that cannot be parsed is hidden entirely.
func RedactDsn(connectionType string, dsn string) string {
	switch connectionType {
	case constants.ConnectionTypeNetezza:
		return NetezzaConnectionDetails{Dsn: dsn}.String()
	case constants.ConnectionTypeMock:
		return dsn
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<unparsable dsn>"
	}
	return u.Redacted()
}

// DBConnections is used by transform code and JSON pipelines definitions.
type DBConnections map[string]ConnectionDetails

// LoadConnection will load the supplied *c[connectionName], which is expected to be in c, using the interface
// to do the actual loading. Connections are loaded by LogicalName, falling back to the map key.
func (c *DBConnections) LoadConnection(i ConnectionGetter, connectionName string) error {
	conn, ok := (*c)[connectionName]
	if !ok {
		return fmt.Errorf("connection %q is not declared", connectionName)
	}
	name := conn.LogicalName
	if name == "" {
		name = connectionName
	}
	d, err := i.LoadConnection(name)
	if err != nil {
		return err
	}
	(*c)[connectionName] = d // replace the connection with the loaded version
	return nil
}

// Redacted returns a copy of c whose connections carry only their type and logical name.
// Use it before exporting a pipeline definition.
func (c DBConnections) Redacted() DBConnections {
	r := make(DBConnections, len(c))
	for k, v := range c {
		r[k] = ConnectionDetails{Type: v.Type, LogicalName: v.LogicalName}
	}
	return r
}
