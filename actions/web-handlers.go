package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/relloyd/sparkpipe/logger"
	"github.com/relloyd/sparkpipe/transform"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRunList struct {
	Status  WebServerResponse `json:"status"`
	RunList []RunListItem     `json:"runs"`
}

type RunListItem struct {
	RunID       string           `json:"runId"`
	DagID       string           `json:"dagId"`
	LogicalDate time.Time        `json:"logicalDate"`
	RunStatus   transform.Status `json:"runStatus"`
}

type ResponseRunStats struct {
	Status       WebServerResponse `json:"status"`
	Message      string            `json:"message"`
	StatsSummary interface{}       `json:"runStats"`
}

type ResponseRunStatus struct {
	Status    WebServerResponse   `json:"status"`
	Message   string              `json:"message"`
	RunStatus transform.RunStatus `json:"runStatus"`
}

type ResponseRunStop struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunID   string            `json:"runId"`
}

type ResponseRunLaunch struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunID   string            `json:"runId"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // a stop is already pending.
		}
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerRunLaunch launches a run of the pipeline definition found in the request body.
// Query parameter logicalDate overrides the most recent schedule tick.
func GetHandlerRunLaunch(log logger.Logger, allRunInfo *transform.SafeMapRunInfo, web *WebServerConfig) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// Ingest the pipeline from the request body JSON.
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			logAndRespond(log, err, w, ResponseRunLaunch{Status: Error, Message: fmt.Sprintf("error reading request: %v", err)})
			return
		}
		p, err := transform.ParsePipelineDefinition(b)
		if err != nil {
			logAndRespond(log, err, w,
				ResponseRunLaunch{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
			return
		}
		// Load connections from file if not in the pipeline.
		if err := loadConnectionDataIfMissing(web.Connections, p); err != nil {
			logAndRespond(log, err, w,
				ResponseRunLaunch{Status: Error, Message: fmt.Sprintf("error loading connection details: %v", err)})
			return
		}
		logicalDate, err := parseLogicalDate(r.URL.Query().Get("logicalDate"))
		if err != nil {
			logAndRespond(log, err, w, ResponseRunLaunch{Status: Error, Message: err.Error()})
			return
		}
		// Launch.
		runID, err := transform.LaunchPipelineDefinition(log, allRunInfo, p, transform.RunOptions{
			BlockUntilComplete: false,
			StatsDumpFrequency: time.Duration(web.StatsDumpFrequencySeconds) * time.Second,
			LogicalDate:        logicalDate,
			CleanupHandlerFn:   transform.CleanupHandlerNone,
			ManagerOptions:     web.managerOptions(),
		})
		if err != nil {
			logAndRespond(log, err, w,
				ResponseRunLaunch{Status: Error, Message: fmt.Sprintf("invalid pipeline definition supplied: %v", err)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunLaunch{Status: Okay, Message: "run launched", RunID: runID})
	}
}

func GetHandlerRunStop(log logger.Logger, allRunInfo *transform.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request to stop run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStop{Status: Error, Message: "run does not exist", RunID: id})
			return
		}
		w.WriteHeader(http.StatusOK)
		if ri.Status.RunIsFinished() || !ri.Closer.RequestShutdown(nil) { // if the run has already finished...
			log.Info("HTTP request to stop run ", id, " that has already finished.")
			respond(log, w, ResponseRunStop{Status: Error, Message: "run already ended", RunID: id})
			return
		}
		log.Info("Stopping run ", id)
		respond(log, w, ResponseRunStop{Status: Okay, Message: "shutting down", RunID: id})
	}
}

func GetHandlerRunList(log logger.Logger, allRunInfo *transform.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		all := allRunInfo.List()
		runs := make([]RunListItem, 0, len(all))
		for _, v := range all {
			runs = append(runs, RunListItem{
				RunID:       v.RunID,
				DagID:       v.DagID,
				LogicalDate: v.LogicalDate,
				RunStatus:   v.Status.Status,
			})
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunList{Status: Okay, RunList: runs})
	}
}

func GetHandlerRunStats(log logger.Logger, allRunInfo *transform.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request to fetch stats for run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStats{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunStats{Status: Okay, StatsSummary: ri.Stats.GetStats()})
	}
}

func GetHandlerRunStatus(log logger.Logger, allRunInfo *transform.SafeMapRunInfo) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, ok := allRunInfo.Load(id)
		if !ok { // if the run doesn't exist...
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request for status of run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunStatus{Status: Okay, RunStatus: ri.Status})
	}
}

// logAndRespond will log the error, write a http.StatusBadRequest and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r ResponseRunLaunch) {
	log.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error(err)
	}
}
