package assets

import "log"

// ProgressReporter receives coarse progress fractions during a lookup. Done
// is called exactly once per lookup, including failed ones, so consumers
// never hang on an indicator that was started but not cleared.
type ProgressReporter interface {
	Start()
	Set(fraction float64)
	Done()
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Start()      {}
func (NopReporter) Set(float64) {}
func (NopReporter) Done()       {}

// LogReporter writes progress fractions to a logger.
type LogReporter struct {
	Logger *log.Logger
}

var _ ProgressReporter = (*LogReporter)(nil)

func (r *LogReporter) Start() {
	r.Logger.Printf("nav/assets: progress 0%%")
}

func (r *LogReporter) Set(fraction float64) {
	r.Logger.Printf("nav/assets: progress %.0f%%", fraction*100)
}

func (r *LogReporter) Done() {
	r.Logger.Printf("nav/assets: progress done")
}
