package transform

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/relloyd/sparkpipe/logger"
	"golang.org/x/net/context"
)

// CleanupHandlerFunc waits for a reason to stop run runID and then calls cancelFunc.
// It must return when ctxDone is closed.
type CleanupHandlerFunc = func(log logger.Logger, runID string, rc *RunCloser, cancelFunc context.CancelFunc, ctxDone <-chan struct{})

// CleanupHandlerDefault handles CTRL-C and SIGTERM as well as stop requests sent on the run's shutdown channel.
func CleanupHandlerDefault(log logger.Logger, runID string, rc *RunCloser, cancelFunc context.CancelFunc, ctxDone <-chan struct{}) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	select {
	case x := <-c:
		fmt.Println() // new line for a clean CLI look n feel.
		log.Info("Caught ", x.String())
	case e, ok := <-rc.chanShutdown:
		if !ok { // the run completed.
			return
		}
		if e != nil {
			log.Error(e)
		}
	case <-ctxDone:
		return
	}
	log.Info("Shutting down run ", runID, "...")
	cancelFunc()
}

// CleanupHandlerNone only waits for the run to end. Used by the HTTP service, which stops runs with RunCloser.RequestShutdown.
func CleanupHandlerNone(log logger.Logger, runID string, rc *RunCloser, cancelFunc context.CancelFunc, ctxDone <-chan struct{}) {
	select {
	case _, ok := <-rc.chanShutdown:
		if !ok {
			return
		}
		log.Info("Shutting down run ", runID, "...")
		cancelFunc()
	case <-ctxDone:
	}
}
