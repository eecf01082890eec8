package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cognitio-libera/cognitio/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The first interrupt cancels in-flight model calls; restoring the
	// default handler lets a second one terminate a blocked prompt.
	go func() {
		<-ctx.Done()
		stop()
	}()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
