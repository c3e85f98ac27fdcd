package actions

import (
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

type ConnectionHandler interface {
	GetConnectionType(connectionName string) (connectionType string, err error)
	GetConnectionDetails(connectionName string) (connectionDetails *shared.ConnectionDetails, err error)
}

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

// ConnectionLister is satisfied by config.File.
type ConnectionLister interface {
	ConnectionHandler
	GetAllKeys() ([]string, error)
}

type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}
