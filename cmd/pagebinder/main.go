package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Cancel the run context on interrupt so an in-flight merge stops
	// before publishing anything.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports a failed run. Error kinds identify themselves in
// their message (schema:, backend:, convergence:), so the kind reaches
// the user without any classification here.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "pagebinder: %v\n", err)
}
