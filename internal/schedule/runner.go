package schedule

import (
	"context"
	"log"
	"time"
)

// RunFunc executes one full coordinator invocation. weekend is true on
// Saturday/Sunday so the caller can apply the reduced weekend batch cap.
type RunFunc func(ctx context.Context, weekend bool)

// Runner drives the policy on a check tick. Everything runs on one
// goroutine: triggers fire sequentially, so two runs can never overlap.
// A trigger that comes due while a run is in progress fires on the next
// tick after the run completes.
type Runner struct {
	policy   *Policy
	interval time.Duration
	run      RunFunc

	now func() time.Time
}

func NewRunner(policy *Policy, checkInterval time.Duration, run RunFunc) *Runner {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Runner{
		policy:   policy,
		interval: checkInterval,
		run:      run,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	log.Printf("⏰ scheduler started, checking every %s", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⏰ scheduler stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	now := r.now()
	for _, t := range r.policy.Due(now) {
		if ctx.Err() != nil {
			return
		}
		log.Printf("⏰ trigger %s firing", t)
		r.policy.MarkFired(t, now)
		r.run(ctx, IsWeekend(now))
	}
}
