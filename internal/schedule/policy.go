// Daily time-of-day triggers. The policy only answers "is a run due";
// the runner owns the tick loop and fires them.

package schedule

import (
	"fmt"
	"time"
)

type Trigger struct {
	Hour   int
	Minute int
}

func (t Trigger) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTrigger parses an "HH:MM" config value.
func ParseTrigger(s string) (Trigger, error) {
	var t Trigger
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return t, fmt.Errorf("invalid trigger time %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return t, fmt.Errorf("invalid trigger time %q: out of range", s)
	}
	return t, nil
}

// Policy tracks, per trigger, the last date it fired. Triggers from
// previous days are never fired retroactively: only a trigger whose
// time-of-day has passed today and which has not fired today is due.
// State lives in memory; a restart simply re-fires the next due trigger.
type Policy struct {
	triggers     []Trigger
	workdaysOnly bool
	lastFired    map[Trigger]string // trigger -> "2006-01-02"
}

func NewPolicy(times []string, workdaysOnly bool) (*Policy, error) {
	p := &Policy{
		workdaysOnly: workdaysOnly,
		lastFired:    make(map[Trigger]string),
	}
	for _, s := range times {
		t, err := ParseTrigger(s)
		if err != nil {
			return nil, err
		}
		p.triggers = append(p.triggers, t)
	}
	return p, nil
}

// Due returns the triggers that should fire now, in config order.
func (p *Policy) Due(now time.Time) []Trigger {
	if p.workdaysOnly && IsWeekend(now) {
		return nil
	}

	today := now.Format("2006-01-02")
	minuteOfDay := now.Hour()*60 + now.Minute()

	var due []Trigger
	for _, t := range p.triggers {
		if t.Hour*60+t.Minute > minuteOfDay {
			continue
		}
		if p.lastFired[t] == today {
			continue
		}
		due = append(due, t)
	}
	return due
}

// MarkFired records that a trigger fired on now's date.
func (p *Policy) MarkFired(t Trigger, now time.Time) {
	p.lastFired[t] = now.Format("2006-01-02")
}

// IsWeekend reports whether now falls on Saturday or Sunday; the CLI
// uses it to apply the reduced weekend batch cap.
func IsWeekend(now time.Time) bool {
	wd := now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
