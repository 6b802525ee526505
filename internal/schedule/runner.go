// Package schedule wraps the cron scheduler with context-aware jobs so the
// polling loops stop cleanly on shutdown.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Runner schedules recurring jobs with second precision.
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New creates a runner whose jobs receive baseCtx. Cancelling baseCtx tells
// in-flight jobs to stop.
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		baseCtx: baseCtx,
	}
}

// Add registers a job on a cron spec with a seconds field, for example
// "*/15 * * * * *" for every fifteen seconds.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

// Start begins running scheduled jobs in their own goroutines.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
