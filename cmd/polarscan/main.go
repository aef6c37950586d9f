// Command polarscan reads angle/ADC pairs from a rotating IR rangefinder and
// renders a live polar map of the latest distance at each angle.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(defaultEnvironment()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
