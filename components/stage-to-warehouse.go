package components

import (
	"github.com/relloyd/sparkpipe/aws/s3"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/rdbms"
	"github.com/relloyd/sparkpipe/rdbms/shared"
	"golang.org/x/net/context"
)

// ListerFunc builds an object lister for the preflight check using the resolved keys.
type ListerFunc func(bucket string, region string, keys s3.AccessKeys) (s3.Lister, error)

type StageToWarehouseConfig struct {
	Log             logger.Logger        `errorTxt:"logger" mandatory:"yes"`
	Name            string               `errorTxt:"task name" mandatory:"yes"`
	Db              shared.Connector     `errorTxt:"warehouse connection" mandatory:"yes"`
	Credentials     s3.CredentialsGetter `errorTxt:"credentials getter" mandatory:"yes"`
	CredentialsName string               `errorTxt:"AWS credentials connection name" mandatory:"yes"`
	Table           string               `errorTxt:"staging table" mandatory:"yes"`
	Bucket          string               `errorTxt:"S3 bucket" mandatory:"yes"`
	KeyTemplate     string               // S3 key or prefix; may contain ${...} run variables.
	JsonOption      string               // "auto" or s3:// path of a JSONPaths file.
	Region          string
	ListerFn        ListerFunc // optional preflight listing of the source objects.
}

// StageToWarehouse replaces the contents of a staging table with the JSON objects found under an S3 prefix.
type StageToWarehouse struct {
	cfg     StageToWarehouseConfig
	table   rdbms.SchemaTable
	dialect rdbms.Dialect
}

func NewStageToWarehouse(cfg *StageToWarehouseConfig) (*StageToWarehouse, error) {
	t, d, err := newTaskSetup(cfg, cfg.Table, cfg.Db)
	if err != nil {
		return nil, err
	}
	return &StageToWarehouse{cfg: *cfg, table: t, dialect: d}, nil
}

func (s *StageToWarehouse) Execute(ctx context.Context, rc *RunContext) error {
	cfg := s.cfg
	cfg.Log.Info(cfg.Name, " is running")
	keys, err := cfg.Credentials.GetCredentials(cfg.CredentialsName)
	if err != nil {
		cfg.Log.Error(cfg.Name, " unable to fetch credentials ", cfg.CredentialsName, ": ", err)
		return err
	}
	key, err := rc.Render(cfg.KeyTemplate)
	if err != nil {
		return err
	}
	if cfg.ListerFn != nil {
		if err := s.preflight(key, keys); err != nil {
			return err
		}
	}
	spec := rdbms.CopyJsonSpec{
		Table:           s.table,
		SourcePath:      s3.BuildPath(cfg.Bucket, key),
		AccessKeyId:     keys.AccessKeyId,
		SecretAccessKey: keys.SecretAccessKey,
		SessionToken:    keys.SessionToken,
		Region:          cfg.Region,
		JsonOption:      cfg.JsonOption,
	}
	deleteSql, err := s.dialect.DeleteAll(s.table)
	if err != nil {
		return err
	}
	copySql, err := s.dialect.CopyJson(spec)
	if err != nil {
		return err
	}
	cfg.Log.Info(cfg.Name, " clearing data from ", s.table)
	if err = execStatements(ctx, cfg.Log, cfg.Name, cfg.Db, rc, nil, deleteSql); err != nil {
		return err
	}
	cfg.Log.Info(cfg.Name, " copying data from ", spec.SourcePath, " to ", s.table)
	if err = execStatements(ctx, cfg.Log, cfg.Name, cfg.Db, rc, spec.Redact, copySql); err != nil {
		return err
	}
	cfg.Log.Info(cfg.Name, " complete")
	return nil
}

// preflight logs how many objects the COPY will see. An empty prefix is only a warning.
func (s *StageToWarehouse) preflight(key string, keys s3.AccessKeys) error {
	cfg := s.cfg
	l, err := cfg.ListerFn(cfg.Bucket, cfg.Region, keys)
	if err != nil {
		return err
	}
	objects, err := l.List(key)
	if err != nil {
		cfg.Log.Error(cfg.Name, " unable to list s3://", cfg.Bucket, "/", key, ": ", err)
		return err
	}
	if len(objects) == 0 {
		cfg.Log.Warn(cfg.Name, " found no objects under ", s3.BuildPath(cfg.Bucket, key))
	} else {
		cfg.Log.Info(cfg.Name, " found ", len(objects), " objects under ", s3.BuildPath(cfg.Bucket, key))
	}
	return nil
}
