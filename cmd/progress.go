package main

import (
	"fmt"
	"io"
	"os"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
)

// consoleReporter prints queue progress for a person watching a terminal.
type consoleReporter struct {
	out   io.Writer
	total int
}

// newProgressReporter prints to a terminal and logs otherwise.
func newProgressReporter(out *os.File) jobs.ProgressReporter {
	if isTerminal(out) {
		return &consoleReporter{out: out}
	}
	return service.NewLogReporter()
}

func (r *consoleReporter) OnStart(total int, description string) {
	r.total = total
	fmt.Fprintf(r.out, "%s: %d pending\n", description, total)
}

func (r *consoleReporter) OnProgress(current int, description string) {
	fmt.Fprintf(r.out, "  [%d/%d] %s\n", current, r.total, description)
}

func (r *consoleReporter) OnComplete() {
	fmt.Fprintln(r.out, "Done.")
}

func (r *consoleReporter) OnError(description, message string) {
	fmt.Fprintf(r.out, "  ✗ %s: %s\n", description, message)
}
