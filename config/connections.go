package config

import (
	"fmt"

	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// GetConnectionType returns the type of a saved connection.
func (c *File) GetConnectionType(connectionName string) (connectionType string, err error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return d.Type, nil
}

// GetConnectionDetails fetches generic connection details from the File c using the connectionName to do the lookup.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	d := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, d); err != nil {
		return nil, err
	}
	if d.Type == "" {
		return nil, fmt.Errorf("connection %q is not configured: use 'config connections add' to create it", connectionName)
	}
	return d, nil
}

// LoadConnection implements shared.ConnectionGetter.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}
