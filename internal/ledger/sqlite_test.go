package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteLookupAbsent(t *testing.T) {
	s := openTestStore(t)

	e, err := s.Lookup(context.Background(), "boss", "missing")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSQLiteAppendAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	require.NoError(t, s.Append(ctx, Entry{
		Platform:   "boss",
		ExternalID: "42",
		AppliedAt:  now,
		Outcome:    OutcomeFailed,
		Reason:     "chat button missing",
	}))
	require.NoError(t, s.Append(ctx, Entry{
		Platform:   "boss",
		ExternalID: "42",
		AppliedAt:  now.Add(time.Minute),
		Outcome:    OutcomeSucceeded,
		Greeting:   "您好",
	}))

	e, err := s.Lookup(ctx, "boss", "42")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, OutcomeSucceeded, e.Outcome)
	assert.Equal(t, "您好", e.Greeting)
	assert.True(t, e.AppliedAt.Equal(now.Add(time.Minute)))
}

func TestSQLitePlatformPartitioning(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Entry{
		Platform: "boss", ExternalID: "42", AppliedAt: time.Now(), Outcome: OutcomeSucceeded,
	}))

	e, err := s.Lookup(ctx, "liepin", "42")
	require.NoError(t, err)
	assert.Nil(t, e, "same external id on another platform is a different posting")
}

func TestSQLiteSucceededUniqueness(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Entry{
		Platform: "boss", ExternalID: "42", AppliedAt: time.Now(), Outcome: OutcomeSucceeded,
	}))

	err := s.Append(ctx, Entry{
		Platform: "boss", ExternalID: "42", AppliedAt: time.Now(), Outcome: OutcomeSucceeded,
	})
	assert.Error(t, err, "second succeeded entry for the same posting must be rejected")

	// A later failed entry is still allowed.
	assert.NoError(t, s.Append(ctx, Entry{
		Platform: "boss", ExternalID: "42", AppliedAt: time.Now(), Outcome: OutcomeFailed,
	}))
}

func TestSQLiteCountSucceededSince(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	entries := []Entry{
		{Platform: "boss", ExternalID: "old", AppliedAt: midnight.Add(-time.Hour), Outcome: OutcomeSucceeded},
		{Platform: "boss", ExternalID: "a", AppliedAt: midnight.Add(time.Hour), Outcome: OutcomeSucceeded},
		{Platform: "boss", ExternalID: "b", AppliedAt: midnight.Add(2 * time.Hour), Outcome: OutcomeSucceeded},
		{Platform: "boss", ExternalID: "c", AppliedAt: midnight.Add(3 * time.Hour), Outcome: OutcomeFailed},
		{Platform: "liepin", ExternalID: "d", AppliedAt: midnight.Add(time.Hour), Outcome: OutcomeSucceeded},
	}
	for _, e := range entries {
		require.NoError(t, s.Append(ctx, e))
	}

	n, err := s.CountSucceededSince(ctx, "boss", midnight)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "yesterday, failures and other platforms do not count")
}

func TestSQLiteCountSucceededSinceMixedOffsets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// The same instant, expressed in three different zones. Stored
	// strings must compare by instant, not by local-time digits.
	shanghai := time.FixedZone("CST", 8*3600)
	newYork := time.FixedZone("EST", -5*3600)
	midnightUTC := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	entries := []Entry{
		// 07:00 CST on the 25th = 23:00 UTC on the 24th: before the boundary.
		{Platform: "boss", ExternalID: "old", AppliedAt: time.Date(2026, 8, 25, 7, 0, 0, 0, shanghai), Outcome: OutcomeSucceeded},
		// 09:00 CST on the 25th = 01:00 UTC: after.
		{Platform: "boss", ExternalID: "a", AppliedAt: time.Date(2026, 8, 25, 9, 0, 0, 0, shanghai), Outcome: OutcomeSucceeded},
		// 02:00 EST on the 25th = 07:00 UTC: after.
		{Platform: "boss", ExternalID: "b", AppliedAt: time.Date(2026, 8, 25, 2, 0, 0, 0, newYork), Outcome: OutcomeSucceeded},
	}
	for _, e := range entries {
		require.NoError(t, s.Append(ctx, e))
	}

	n, err := s.CountSucceededSince(ctx, "boss", midnightUTC.In(shanghai))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryMatchesSQLiteSemantics(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now()

	e, err := m.Lookup(ctx, "boss", "42")
	require.NoError(t, err)
	assert.Nil(t, e)

	require.NoError(t, m.Append(ctx, Entry{Platform: "boss", ExternalID: "42", AppliedAt: now, Outcome: OutcomeFailed}))
	require.NoError(t, m.Append(ctx, Entry{Platform: "boss", ExternalID: "42", AppliedAt: now, Outcome: OutcomeSucceeded}))

	e, err = m.Lookup(ctx, "boss", "42")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, OutcomeSucceeded, e.Outcome)

	n, err := m.CountSucceededSince(ctx, "boss", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
