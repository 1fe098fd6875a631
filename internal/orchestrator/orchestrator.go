// Drives one platform end to end: search, dedup against the ledger,
// filter, then a paced sequential apply loop under daily/batch caps.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go-jobapply-automation/internal/filter"
	"go-jobapply-automation/internal/greeting"
	"go-jobapply-automation/internal/ledger"
	"go-jobapply-automation/internal/platform"
)

// Status is the terminal state of one platform's run. The states are
// semantically distinct and must never be collapsed: completed means the
// queue drained, limit_stopped means a cap tripped, auth_aborted means
// the session died, fatal is everything unexpected.
type Status string

const (
	StatusCompleted    Status = "completed"
	StatusLimitStopped Status = "limit_stopped"
	StatusAuthAborted  Status = "auth_aborted"
	StatusCancelled    Status = "cancelled"
	StatusFatal        Status = "fatal"
)

// Report is the per-platform run summary.
type Report struct {
	Platform string

	Discovered     int
	AlreadyApplied int
	FilteredOut    int
	Succeeded      int
	Failed         int
	RateLimited    int

	Status Status
	Err    string
}

// Limits are the per-platform pacing and cap settings, immutable for
// the duration of a run.
type Limits struct {
	// DailyLimit caps succeeded applies per calendar day (process-local
	// midnight boundary). BatchLimit caps apply attempts per run.
	DailyLimit int
	BatchLimit int

	// IntervalMin/Max bound the randomized pause between consecutive
	// applies. The jitter is an anti-detection measure; it is always a
	// range, never a constant.
	IntervalMin time.Duration
	IntervalMax time.Duration

	// MaxScan caps postings taken from one search, preventing unbounded
	// scans. 0 means no cap.
	MaxScan int

	// RetryFailed re-attempts postings whose last ledger entry is a
	// failure. Default false: failures are terminal.
	RetryFailed bool

	// ApplyTimeout bounds a single adapter Apply call. An overrun is
	// recorded as a failed attempt instead of hanging the run.
	ApplyTimeout time.Duration
}

type Orchestrator struct {
	adapter   platform.Adapter
	store     ledger.Store
	rules     filter.Rules
	greetings *greeting.Picker
	limits    Limits

	// Injectable for tests; real runs sleep on the wall clock.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(min, max time.Duration) time.Duration
	now    func() time.Time
}

func New(adapter platform.Adapter, store ledger.Store, rules filter.Rules, greetings *greeting.Picker, limits Limits) *Orchestrator {
	return &Orchestrator{
		adapter:   adapter,
		store:     store,
		rules:     rules,
		greetings: greetings,
		limits:    limits,
		sleep:     sleepCtx,
		jitter:    uniformJitter,
		now:       time.Now,
	}
}

// Run executes one platform pass and always returns a report; errors are
// folded into the report rather than propagated, so one platform can
// never take down its siblings.
func (o *Orchestrator) Run(ctx context.Context, spec platform.SearchSpec) Report {
	id := o.adapter.ID()
	rep := Report{Platform: id, Status: StatusCompleted}

	postings, err := o.adapter.Search(ctx, spec)
	if err != nil {
		if errors.Is(err, platform.ErrSessionExpired) {
			rep.Status = StatusAuthAborted
			rep.Err = err.Error()
			return rep
		}
		rep.Status = StatusFatal
		rep.Err = fmt.Sprintf("search: %v", err)
		return rep
	}
	if o.limits.MaxScan > 0 && len(postings) > o.limits.MaxScan {
		log.Printf("[%s] scan cap: considering %d of %d postings", id, o.limits.MaxScan, len(postings))
		postings = postings[:o.limits.MaxScan]
	}
	rep.Discovered = len(postings)
	log.Printf("[%s] discovered %d postings", id, rep.Discovered)

	now := o.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	usedToday, err := o.store.CountSucceededSince(ctx, id, dayStart)
	if err != nil {
		rep.Status = StatusFatal
		rep.Err = fmt.Sprintf("daily counter: %v", err)
		return rep
	}

	attempts := 0
	limitHit := false

	for _, p := range postings {
		if ctx.Err() != nil {
			rep.Status = StatusCancelled
			break
		}

		prev, err := o.store.Lookup(ctx, id, p.ExternalID)
		if err != nil {
			rep.Status = StatusFatal
			rep.Err = fmt.Sprintf("ledger lookup: %v", err)
			break
		}
		if prev != nil && terminal(prev.Outcome, o.limits.RetryFailed) {
			rep.AlreadyApplied++
			continue
		}

		if d := o.rules.Decide(p); !d.Accept {
			rep.FilteredOut++
			log.Printf("[%s] filtered (%s): %s - %s", id, d.Reason, p.Title, p.Company)
			continue
		}

		if limitHit || attempts >= o.limits.BatchLimit || usedToday >= o.limits.DailyLimit {
			if !limitHit {
				limitHit = true
				log.Printf("[%s] limit reached (today=%d/%d, batch=%d/%d), stopping applies",
					id, usedToday, o.limits.DailyLimit, attempts, o.limits.BatchLimit)
			}
			rep.RateLimited++
			if err := o.store.Append(ctx, ledger.Entry{
				Platform:   id,
				ExternalID: p.ExternalID,
				AppliedAt:  o.now(),
				Outcome:    ledger.OutcomeRateLimited,
				Reason:     "daily or batch limit reached",
			}); err != nil {
				rep.Status = StatusFatal
				rep.Err = fmt.Sprintf("ledger append: %v", err)
				break
			}
			continue
		}

		if attempts > 0 {
			pause := o.jitter(o.limits.IntervalMin, o.limits.IntervalMax)
			if err := o.sleep(ctx, pause); err != nil {
				rep.Status = StatusCancelled
				break
			}
		}

		greetingText := o.greetings.For(p)
		log.Printf("[%s] applying [%d/%d]: %s - %s", id, attempts+1, o.limits.BatchLimit, p.Title, p.Company)

		err = o.apply(ctx, p, greetingText)
		attempts++

		entry := ledger.Entry{
			Platform:   id,
			ExternalID: p.ExternalID,
			AppliedAt:  o.now(),
			Greeting:   greetingText,
		}

		switch {
		case err == nil:
			entry.Outcome = ledger.OutcomeSucceeded
			rep.Succeeded++
			usedToday++
		case errors.Is(err, platform.ErrSessionExpired):
			entry.Outcome = ledger.OutcomeFailed
			entry.Reason = "session expired"
			rep.Failed++
		default:
			entry.Outcome = ledger.OutcomeFailed
			entry.Reason = err.Error()
			rep.Failed++
			log.Printf("[%s] apply failed: %s - %v", id, p.Title, err)
		}

		if appendErr := o.store.Append(ctx, entry); appendErr != nil {
			rep.Status = StatusFatal
			rep.Err = fmt.Sprintf("ledger append: %v", appendErr)
			break
		}

		if errors.Is(err, platform.ErrSessionExpired) {
			// No further attempt this run can succeed.
			rep.Status = StatusAuthAborted
			rep.Err = err.Error()
			break
		}
	}

	if limitHit && rep.Status == StatusCompleted {
		rep.Status = StatusLimitStopped
	}
	return rep
}

func (o *Orchestrator) apply(ctx context.Context, p platform.JobPosting, greetingText string) error {
	if o.limits.ApplyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.limits.ApplyTimeout)
		defer cancel()
	}
	return o.adapter.Apply(ctx, p, greetingText)
}

// terminal reports whether a prior ledger outcome makes a posting
// ineligible. Succeeded is always terminal; failed is terminal unless
// retries are enabled; rate_limited skips stay eligible for later runs.
func terminal(outcome ledger.Outcome, retryFailed bool) bool {
	switch outcome {
	case ledger.OutcomeSucceeded:
		return true
	case ledger.OutcomeFailed:
		return !retryFailed
	default:
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniformJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}
