package service

import (
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// LogReporter writes queue progress to the application log.
type LogReporter struct {
	total int
}

var _ jobs.ProgressReporter = (*LogReporter)(nil)

func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

func (r *LogReporter) OnStart(total int, description string) {
	r.total = total
	log.Info("%s: %d items", description, total)
}

func (r *LogReporter) OnProgress(current int, description string) {
	log.Info("[%d/%d] %s", current, r.total, description)
}

func (r *LogReporter) OnComplete() {
	log.Info("Queue run complete")
}

func (r *LogReporter) OnError(description, message string) {
	log.Error("%s failed: %s", description, message)
}
