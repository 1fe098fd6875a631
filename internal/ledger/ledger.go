// Durable record of every apply attempt, partitioned by platform.
// The orchestrator is the only writer; entries are append-only.

package ledger

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeFailed      Outcome = "failed"
	OutcomeRateLimited Outcome = "rate_limited"
)

// Entry is one apply attempt. Greeting and Reason are audit fields.
type Entry struct {
	Platform   string
	ExternalID string
	AppliedAt  time.Time
	Outcome    Outcome
	Greeting   string
	Reason     string
}

type Store interface {
	// Lookup returns the most recent entry for (platform, externalID),
	// or nil when the posting has never been attempted.
	Lookup(ctx context.Context, platform, externalID string) (*Entry, error)

	Append(ctx context.Context, e Entry) error

	// CountSucceededSince counts succeeded entries for a platform with
	// AppliedAt >= since. Used for the daily cap: callers pass local
	// midnight, so the day boundary is the process's local time zone.
	CountSucceededSince(ctx context.Context, platform string, since time.Time) (int, error)

	Close() error
}
