package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/sqlqueries"
	"github.com/relloyd/sparkpipe/transform"
)

type RunConfig struct {
	PipelineFile              string          // empty means the Sparkify pipeline.
	Sparkify                  *SparkifyConfig // settings used when PipelineFile is empty.
	SqlFile                   string          // optional overrides of the named SQL statements.
	Connections               ConnectionLoader
	LogicalDate               string // RFC3339 or YYYY-MM-DD; empty means the most recent schedule tick.
	Params                    map[string]string
	S3Preflight               bool
	WithWebService            bool `errorTxt:"with-server" mandatory:"no"`
	LogLevel                  string
	StackDumpOnPanic          bool
	StatsDumpFrequencySeconds int
	runManagerOptions         []transform.RunManagerOption
}

// RunPipeline runs the pipeline once, optionally behind the HTTP service.
func RunPipeline(cfg *RunConfig, web *WebServerConfig) error {
	if cfg == nil {
		return fmt.Errorf("nil pointer for run config supplied")
	}
	// Setup logging.
	log, err := logger.NewLogger(constants.AppName, cfg.LogLevel, cfg.StackDumpOnPanic)
	if err != nil {
		return err
	}
	p, err := GetPipeline(cfg.PipelineFile, cfg.Sparkify)
	if err != nil {
		return err
	}
	// Load connections from file if not in the pipeline.
	if err := loadConnectionDataIfMissing(cfg.Connections, p); err != nil {
		return err
	}
	if !cfg.WithWebService { // if we should run without an HTTP server...
		_, err = launchPipeline(log, p, cfg)
		return err
	}
	if web == nil {
		return fmt.Errorf("nil pointer to web server config supplied")
	}
	web.StatsDumpFrequencySeconds = cfg.StatsDumpFrequencySeconds
	web.S3Preflight = web.S3Preflight || cfg.S3Preflight
	if web.SqlFile == "" {
		web.SqlFile = cfg.SqlFile
	}
	return launchPipelineWithServer(log, p, cfg, web)
}

// GetPipeline loads the pipeline definition from fileName, or renders the Sparkify pipeline when fileName is empty.
func GetPipeline(fileName string, sparkify *SparkifyConfig) (*transform.PipelineDefinition, error) {
	if fileName != "" {
		return loadPipelineFromFile(fileName)
	}
	if sparkify == nil {
		sparkify = NewSparkifyConfig()
	}
	return GetSparkifyPipeline(sparkify)
}

// launchPipeline runs p to completion and returns the run id.
func launchPipeline(log logger.Logger, p *transform.PipelineDefinition, cfg *RunConfig) (string, error) {
	logicalDate, err := parseLogicalDate(cfg.LogicalDate)
	if err != nil {
		return "", err
	}
	opts := append([]transform.RunManagerOption(nil), cfg.runManagerOptions...)
	if cfg.S3Preflight {
		opts = append(opts, transform.WithS3Preflight())
	}
	if cfg.SqlFile != "" {
		r, err := loadSqlRegistry(cfg.SqlFile)
		if err != nil {
			return "", err
		}
		opts = append(opts, transform.WithSqlRegistry(r))
	}
	b, _ := json.MarshalIndent(p.Connections.Redacted(), "", "  ")
	log.Debug("pipeline ", p.DagID, " connections: ", string(b))
	ri := transform.NewSafeMapRunInfo()
	runID, err := transform.LaunchPipelineDefinition(log, ri, p, transform.RunOptions{
		BlockUntilComplete: true,
		StatsDumpFrequency: time.Duration(cfg.StatsDumpFrequencySeconds) * time.Second,
		LogicalDate:        logicalDate,
		Params:             cfg.Params,
		ManagerOptions:     opts,
	})
	if err != nil {
		return runID, errors.Wrapf(err, "run %v of %v failed", runID, p.DagID)
	}
	log.Info("Run ", runID, " of ", p.DagID, " succeeded")
	return runID, nil
}

// launchPipelineWithServer will start the web server and POST the pipeline to it.
// If the initial POST fails then it returns an error.
func launchPipelineWithServer(log logger.Logger, p *transform.PipelineDefinition, cfg *RunConfig, web *WebServerConfig) error {
	if err := web.loadSqlFile(); err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	// Start the web server.
	srv, chanStopServer, allRunInfo := runServer(log, web)
	url := "http://localhost:" + strconv.Itoa(web.Port) + urlContext4Runs
	if cfg.LogicalDate != "" {
		url += "?logicalDate=" + cfg.LogicalDate
	}
	log.Debug("posting to url = ", url)
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(b))
	if err == nil {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK { // if the POST succeeded...
			log.Info("Launched pipeline ", p.DagID)
			return waitForServer(log, srv, chanStopServer, allRunInfo)
		}
		err = fmt.Errorf("error launching pipeline, received HTTP status code %v", resp.StatusCode)
	}
	// Shutdown and quit.
	log.Error(err)
	select {
	case chanStopServer <- "":
	default: // a stop is already pending.
	}
	_ = waitForServer(log, srv, chanStopServer, allRunInfo)
	return err
}

func loadSqlRegistry(fileName string) (*sqlqueries.Registry, error) {
	r := sqlqueries.NewRegistry()
	if err := r.Load(fileName); err != nil {
		return nil, err
	}
	return r, nil
}

// parseLogicalDate accepts RFC3339 or YYYY-MM-DD. An empty string returns the zero time.
func parseLogicalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(constants.TimeFormatDs, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse logical date %q: use RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
