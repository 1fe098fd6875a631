// Fans one invocation out over the enabled platforms, sequentially.
// Platforms are isolated: a panic or abort in one never reaches the next.

package coordinator

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobapply-automation/internal/filter"
	"go-jobapply-automation/internal/greeting"
	"go-jobapply-automation/internal/ledger"
	"go-jobapply-automation/internal/orchestrator"
	"go-jobapply-automation/internal/platform"
)

// Target is one platform's complete run configuration.
type Target struct {
	Adapter platform.Adapter
	Spec    platform.SearchSpec
	Rules   filter.Rules
	Limits  orchestrator.Limits

	// Timeout bounds the whole platform pass (search included).
	// 0 means no bound beyond the parent context.
	Timeout time.Duration
}

type RunReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Platforms  []orchestrator.Report
}

type Coordinator struct {
	store     ledger.Store
	greetings *greeting.Picker
}

func New(store ledger.Store, greetings *greeting.Picker) *Coordinator {
	return &Coordinator{store: store, greetings: greetings}
}

// Run executes every target once, in order. The only state shared
// between platforms is the ledger, and its partitions never overlap.
func (c *Coordinator) Run(ctx context.Context, targets []Target) RunReport {
	run := RunReport{StartedAt: time.Now()}

	for _, t := range targets {
		if ctx.Err() != nil {
			run.Platforms = append(run.Platforms, orchestrator.Report{
				Platform: t.Adapter.ID(),
				Status:   orchestrator.StatusCancelled,
			})
			continue
		}

		log.Printf("▶️ [%s] starting", t.Adapter.ID())
		rep := c.runPlatform(ctx, t)
		log.Printf("%s", Summary(rep))
		run.Platforms = append(run.Platforms, rep)
	}

	run.FinishedAt = time.Now()
	return run
}

func (c *Coordinator) runPlatform(ctx context.Context, t Target) (rep orchestrator.Report) {
	defer func() {
		if r := recover(); r != nil {
			rep = orchestrator.Report{
				Platform: t.Adapter.ID(),
				Status:   orchestrator.StatusFatal,
				Err:      fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	o := orchestrator.New(t.Adapter, c.store, t.Rules, c.greetings, t.Limits)
	return o.Run(ctx, t.Spec)
}

// Summary renders one unambiguous status line for a platform report.
func Summary(r orchestrator.Report) string {
	line := fmt.Sprintf("[%s] %s: discovered=%d already_applied=%d filtered=%d succeeded=%d failed=%d rate_limited=%d",
		r.Platform, r.Status, r.Discovered, r.AlreadyApplied, r.FilteredOut, r.Succeeded, r.Failed, r.RateLimited)
	if r.Err != "" {
		line += " err=" + r.Err
	}
	return line
}
