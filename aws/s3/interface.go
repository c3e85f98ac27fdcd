//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"github.com/relloyd/sparkpipe/rdbms/shared"
)

// Lister lists the keys under a prefix.
type Lister interface {
	List(key string) (keys []string, err error)
}

// CredentialsGetter supplies an access key pair given a named credential identifier.
type CredentialsGetter interface {
	GetCredentials(name string) (AccessKeys, error)
}

// ConnectionLoader fetches named connections from the config file or environment.
type ConnectionLoader interface {
	LoadConnection(name string) (shared.ConnectionDetails, error)
}
