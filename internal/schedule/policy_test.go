package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return ts
}

func TestParseTrigger(t *testing.T) {
	tr, err := ParseTrigger("09:30")
	require.NoError(t, err)
	assert.Equal(t, Trigger{Hour: 9, Minute: 30}, tr)

	for _, bad := range []string{"9am", "25:00", "12:75", ""} {
		_, err := ParseTrigger(bad)
		assert.Error(t, err, "trigger %q should be rejected", bad)
	}
}

func TestDueFiresOncePerDay(t *testing.T) {
	// 2026-08-24 is a Monday.
	p, err := NewPolicy([]string{"09:00", "14:00"}, false)
	require.NoError(t, err)

	// Before the first trigger: nothing due.
	assert.Empty(t, p.Due(at(t, "2026-08-24 08:59")))

	// At 09:00 the first trigger is due exactly once.
	due := p.Due(at(t, "2026-08-24 09:00"))
	require.Len(t, due, 1)
	assert.Equal(t, "09:00", due[0].String())
	p.MarkFired(due[0], at(t, "2026-08-24 09:00"))

	// A minute later the same trigger does not re-fire.
	assert.Empty(t, p.Due(at(t, "2026-08-24 09:01")))

	// At 14:00 the second trigger fires.
	due = p.Due(at(t, "2026-08-24 14:00"))
	require.Len(t, due, 1)
	assert.Equal(t, "14:00", due[0].String())
	p.MarkFired(due[0], at(t, "2026-08-24 14:00"))

	// Next day both are due again (once past their times).
	due = p.Due(at(t, "2026-08-25 15:00"))
	assert.Len(t, due, 2)
}

func TestDueAfterDowntimeFiresOnNextTickOnly(t *testing.T) {
	// A fresh policy models a restart: triggers missed while the
	// process was down are represented only by "not fired today".
	p, err := NewPolicy([]string{"09:00"}, false)
	require.NoError(t, err)

	due := p.Due(at(t, "2026-08-24 11:30"))
	require.Len(t, due, 1, "first tick after a missed trigger fires it once")
	p.MarkFired(due[0], at(t, "2026-08-24 11:30"))

	assert.Empty(t, p.Due(at(t, "2026-08-24 11:31")))
}

func TestDueWorkdaysOnly(t *testing.T) {
	p, err := NewPolicy([]string{"09:00"}, true)
	require.NoError(t, err)

	// 2026-08-22 is a Saturday, 2026-08-24 a Monday.
	assert.Empty(t, p.Due(at(t, "2026-08-22 10:00")))
	assert.Len(t, p.Due(at(t, "2026-08-24 10:00")), 1)
}

func TestNewPolicyRejectsBadTimes(t *testing.T) {
	_, err := NewPolicy([]string{"09:00", "nonsense"}, false)
	assert.Error(t, err)
}

func TestRunnerTickFiresSequentially(t *testing.T) {
	p, err := NewPolicy([]string{"09:00", "10:00"}, false)
	require.NoError(t, err)

	var fired []bool
	r := NewRunner(p, time.Minute, func(_ context.Context, weekend bool) {
		fired = append(fired, weekend)
	})
	r.now = func() time.Time { return at(t, "2026-08-24 11:00") }

	r.tick(context.Background())
	assert.Len(t, fired, 2, "both overdue triggers fire, one after the other")

	r.tick(context.Background())
	assert.Len(t, fired, 2, "a second tick the same day fires nothing")
}

func TestRunnerWeekendFlag(t *testing.T) {
	p, err := NewPolicy([]string{"09:00"}, false)
	require.NoError(t, err)

	var weekendSeen bool
	r := NewRunner(p, time.Minute, func(_ context.Context, weekend bool) {
		weekendSeen = weekend
	})
	// 2026-08-23 is a Sunday.
	r.now = func() time.Time { return at(t, "2026-08-23 09:30") }

	r.tick(context.Background())
	assert.True(t, weekendSeen)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(at(t, "2026-08-22 12:00")), "Saturday")
	assert.True(t, IsWeekend(at(t, "2026-08-23 12:00")), "Sunday")
	assert.False(t, IsWeekend(at(t, "2026-08-24 12:00")), "Monday")
}
