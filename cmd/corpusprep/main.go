// Command corpusprep turns a PDF or text document into training datasets.
//
// Usage:
//
//	corpusprep [flags] <source>
//
// Settings are read from defaults, a .env file, CORPUSPREP_* environment
// variables and flags, in increasing order of precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
