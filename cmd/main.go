package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			printError(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

// printError adds a hint for errors the application classified itself.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var classifier apperror.Classifier
	if errors.As(err, &classifier) {
		fmt.Fprintf(w, "Hint: %s\n", apperror.NewDefaultHandler().Advice(err))
	}
}
