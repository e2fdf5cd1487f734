// Command flushot runs the flu-shot-learning benchmark walkthrough.
//
//	flushot run --data-dir data --output my_submission.csv --plots plots
//	flushot evaluate --seed 7 --test-size 0.25
//	flushot eda --config flushot.yaml --log-format console
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/flushot/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.GetLogger().Error("flushot failed", err)
		stop()
		os.Exit(1)
	}
}
