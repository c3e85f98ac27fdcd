package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/relloyd/sparkpipe/helper"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/transform"
)

const (
	urlContext4Runs  = "/runs"
	runShutdownWait  = 15 * time.Second
	serverDrainWait  = 15 * time.Second
	runPollFrequency = 100 * time.Millisecond
)

type WebServerConfig struct {
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	Scheme                    string `errorTxt:"scheme" mandatory:"no"`
	Addr                      net.IP `errorTxt:"address" mandatory:"no"`
	Port                      int    `errorTxt:"port" mandatory:"yes"`
	Connections               ConnectionLoader
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
	S3Preflight               bool
	SqlFile                   string // optional overrides of the named SQL statements.
	runManagerOptions         []transform.RunManagerOption
}

func (web *WebServerConfig) managerOptions() []transform.RunManagerOption {
	opts := append([]transform.RunManagerOption(nil), web.runManagerOptions...)
	if web.S3Preflight {
		opts = append(opts, transform.WithS3Preflight())
	}
	return opts
}

func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	// Check if we have valid input params.
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	// Setup logging.
	log, err := logger.NewLogger(constants.AppName, web.LogLevel, web.StackDumpOnPanic)
	if err != nil {
		return err
	}
	if err = web.loadSqlFile(); err != nil {
		return err
	}
	// Start the web server.
	srv, chanStopServer, allRunInfo := runServer(log, web)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer, allRunInfo)
}

func (web *WebServerConfig) loadSqlFile() error {
	if web.SqlFile == "" {
		return nil
	}
	r, err := loadSqlRegistry(web.SqlFile)
	if err != nil {
		return err
	}
	web.runManagerOptions = append(web.runManagerOptions, transform.WithSqlRegistry(r))
	return nil
}

// newRouter returns the routes of the HTTP service.
func newRouter(log logger.Logger, web *WebServerConfig, chanStopServer chan string, allRunInfo *transform.SafeMapRunInfo) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path(urlContext4Runs).Methods(http.MethodGet).HandlerFunc(GetHandlerRunList(log, allRunInfo))
	r.Path(urlContext4Runs).Methods(http.MethodPost).Headers("Content-Type", "application/json").HandlerFunc(
		GetHandlerRunLaunch(log, allRunInfo, web))
	r.Path(urlContext4Runs + "/{runId}/stats").HandlerFunc(GetHandlerRunStats(log, allRunInfo))
	r.Path(urlContext4Runs + "/{runId}/status").HandlerFunc(GetHandlerRunStatus(log, allRunInfo))
	r.Path(urlContext4Runs + "/{runId}/stop").HandlerFunc(GetHandlerRunStop(log, allRunInfo))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
// 3) a pointer to info on the the running pipelines
func runServer(log logger.Logger, web *WebServerConfig) (*http.Server, chan string, *transform.SafeMapRunInfo) {
	chanStopServer := make(chan string, 1)
	allRunInfo := transform.NewSafeMapRunInfo()
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, web, chanStopServer, allRunInfo), // supply our instance of gorilla/mux.
	}
	if web.Addr == nil {
		srv.Addr = fmt.Sprintf(":%v", web.Port)
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Error(err)
				select {
				case chanStopServer <- "error":
				default:
				}
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v", strings.ToLower(web.Scheme), srv.Addr))
	return srv, chanStopServer, allRunInfo
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, allRunInfo *transform.SafeMapRunInfo) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	defer signal.Stop(chanOS)
	select {
	case <-chanStopServer:
	case <-chanOS:
		fmt.Println() // print new line char for clean looking CLI.
	}
	log.Info("Shutting down web server...")
	stopAllRuns(log, allRunInfo, runShutdownWait)
	// Shutdown web server now.
	ctx, cancel := context.WithTimeout(context.Background(), serverDrainWait)
	defer cancel()
	return srv.Shutdown(ctx) // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
}

// stopAllRuns asks every unfinished run to stop and waits up to timeout for them to end.
func stopAllRuns(log logger.Logger, allRunInfo *transform.SafeMapRunInfo, timeout time.Duration) {
	for _, ri := range allRunInfo.List() {
		if !ri.Status.RunIsFinished() && ri.Closer.RequestShutdown(nil) {
			log.Info("Stopping run ", ri.RunID)
		}
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if countUnfinishedRuns(allRunInfo) == 0 {
			return
		}
		time.Sleep(runPollFrequency)
	}
	log.Warn(countUnfinishedRuns(allRunInfo), " run(s) did not stop within ", timeout)
}

func countUnfinishedRuns(allRunInfo *transform.SafeMapRunInfo) (n int) {
	for _, ri := range allRunInfo.List() {
		if !ri.Status.RunIsFinished() {
			n++
		}
	}
	return
}
