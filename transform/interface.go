package transform

import (
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"github.com/relloyd/sparkpipe/stats"
	"github.com/relloyd/sparkpipe/sqlqueries"
)

// StatsManager abstracts stats capture for the tasks of a run.
type StatsManager interface {
	StartDumping()
	StopDumping()
	AddTaskWatcher(taskName string) *stats.TaskWatcher
	RecordRows(taskName string, rows int64)
	GetStats() []stats.Stats
}

// ResourceManager hands tasks the connections and SQL they are built from.
type ResourceManager interface {
	getDBConnector(name string) (shared.Connector, error)
	getCredentialsGetter() s3.CredentialsGetter
	getListerFunc() func(bucket string, region string, keys s3.AccessKeys) (s3.Lister, error)
	getSqlRegistry() *sqlqueries.Registry
	shutdown()
}
