// Capability contract shared by all recruitment platforms.
// The orchestrator only ever talks to this interface.

package platform

import (
	"context"
	"errors"
	"time"
)

// ErrSessionExpired signals that the stored cookie session is no longer
// valid. It is fatal for the platform for the rest of the run: the
// orchestrator must not retry, a human has to refresh the cookie file.
var ErrSessionExpired = errors.New("session expired, refresh the cookie file")

// JobPosting is one listing discovered by a platform search.
// (Platform, ExternalID) identifies a posting across all time.
type JobPosting struct {
	Platform     string
	ExternalID   string
	Title        string
	Company      string
	Recruiter    string
	Salary       string
	Location     string
	Description  string
	URL          string
	DiscoveredAt time.Time
}

// Key is the ledger partition key for this posting.
func (p JobPosting) Key() string {
	return p.Platform + "/" + p.ExternalID
}

// SearchSpec carries the per-platform search parameters. City, Salary,
// Experience and Degree hold the raw config values; each adapter maps
// them to its own URL codes.
type SearchSpec struct {
	Keywords   []string
	City       string
	Salary     string
	Experience string
	Degree     string
}

// Adapter is implemented once per supported platform.
//
// Search re-issues the query on every call, merges results across the
// configured keywords and dedups by external id. Apply performs one
// irreversible action on the site: nil means the greeting was delivered,
// ErrSessionExpired (possibly wrapped) means the login is gone, any other
// error is a transient failure on that single posting. Apply has no
// visibility into prior attempts; the dedup check happens before it is
// called.
type Adapter interface {
	// ID is the stable platform identifier used as the ledger partition key.
	ID() string

	Search(ctx context.Context, spec SearchSpec) ([]JobPosting, error)

	Apply(ctx context.Context, posting JobPosting, greeting string) error
}
