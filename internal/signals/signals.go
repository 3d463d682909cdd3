// Package signals derives a cancellation context from process signals,
// grounded on the teacher's pkg/lib/signals: SIGINT/SIGTERM cancel the
// returned context once; a second signal exits the process immediately
// (spec §5 Cancellation: "a global timeout raises SIGTERM-equivalent to
// the process group").
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	signalCtx context.Context
	cancel    context.CancelFunc
	once      sync.Once
)

// Context returns a context.Context cancelled on SIGINT/SIGTERM. A second
// signal terminates the process with exit code 128 (spec §6.4 exit code
// for "cancelled by signal"), matching the teacher's "second signal kills"
// discipline.
func Context() context.Context {
	once.Do(func() {
		c := make(chan os.Signal, 2)
		signal.Notify(c, shutdownSignals...)
		signalCtx, cancel = context.WithCancel(context.Background())
		go func() {
			<-c
			cancel()
			select {
			case <-signalCtx.Done():
			case <-c:
				os.Exit(128)
			}
		}()
	})
	return signalCtx
}
