package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// CatchCtrlC cancels the context upon the first SIGINT or SIGTERM, allowing
// the program to shut down gracefully. A second signal exits immediately.
func CatchCtrlC(cancel context.CancelFunc) {
	signals := make(chan os.Signal, 2)
	signal.Notify(signals,
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	go func() {
		<-signals
		cancel()
		<-signals
		os.Exit(1)
	}()
}
