package transform

import (
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/relloyd/sparkpipe/sqlqueries"
)

// RunManager opens and caches the connections declared by a pipeline definition.
// Tasks naming the same connection share one Connector.
type RunManager struct {
	log             logger.Logger
	def             *PipelineDefinition
	registry        *sqlqueries.Registry
	mu              sync.Mutex
	mapDBConnectors map[string]shared.Connector
	listerFn        func(bucket string, region string, keys s3.AccessKeys) (s3.Lister, error)
}

// RunManagerOption customises a RunManager.
type RunManagerOption func(m *RunManager)

// WithSqlRegistry overrides the default SQL registry.
func WithSqlRegistry(r *sqlqueries.Registry) RunManagerOption {
	return func(m *RunManager) {
		m.registry = r
	}
}

// WithConnector supplies an already open connector for name, e.g. a mock warehouse shared with a test.
func WithConnector(name string, db shared.Connector) RunManagerOption {
	return func(m *RunManager) {
		m.mapDBConnectors[name] = db
	}
}

// WithS3Preflight enables listing of source objects before staging loads.
func WithS3Preflight() RunManagerOption {
	return func(m *RunManager) {
		m.listerFn = func(bucket string, region string, keys s3.AccessKeys) (s3.Lister, error) {
			creds := credentials.NewStaticCredentials(keys.AccessKeyId, keys.SecretAccessKey, keys.SessionToken)
			return s3.NewBasicClient(bucket, region, "", creds)
		}
	}
}

func NewRunManager(log logger.Logger, def *PipelineDefinition, options ...RunManagerOption) *RunManager {
	m := &RunManager{
		log:             log,
		def:             def,
		registry:        sqlqueries.NewRegistry(),
		mapDBConnectors: make(map[string]shared.Connector),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// getDBConnectionDetails returns details of a single connection found in the definition.
func (m *RunManager) getDBConnectionDetails(name string) (shared.ConnectionDetails, error) {
	c, ok := m.def.Connections[name]
	if !ok {
		return shared.ConnectionDetails{}, fmt.Errorf("connection %q is not declared", name)
	}
	return c, nil
}

// getDBConnector opens a single connection by name, once.
func (m *RunManager) getDBConnector(name string) (shared.Connector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if db := m.mapDBConnectors[name]; db != nil {
		return db, nil
	}
	c, err := m.getDBConnectionDetails(name)
	if err != nil {
		return nil, err
	}
	db, err := rdbms.OpenDbConnection(m.log, c)
	if err != nil {
		return nil, err
	}
	m.mapDBConnectors[name] = db
	return db, nil
}

// LoadConnection implements s3.ConnectionLoader over the declared connections.
func (m *RunManager) LoadConnection(name string) (shared.ConnectionDetails, error) {
	return m.getDBConnectionDetails(name)
}

func (m *RunManager) getCredentialsGetter() s3.CredentialsGetter {
	return &s3.ConnectionCredentials{Connections: m}
}

func (m *RunManager) getListerFunc() func(bucket string, region string, keys s3.AccessKeys) (s3.Lister, error) {
	return m.listerFn
}

func (m *RunManager) getSqlRegistry() *sqlqueries.Registry {
	return m.registry
}

// shutdown closes every connection opened so far.
func (m *RunManager) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, db := range m.mapDBConnectors {
		m.log.Debug("closing connection ", name)
		db.Close()
		delete(m.mapDBConnectors, name)
	}
}
