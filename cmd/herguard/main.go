// Command herguard records a short clip, classifies its emotion, and sends an
// emergency message when the result is Fear or Angry.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/herguard/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run cancels the command on SIGINT or SIGTERM so an in-flight cycle can
// clean up before the process exits.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Execute(ctx, args, stdout, stderr)
}
