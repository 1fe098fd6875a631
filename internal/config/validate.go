package config

import (
	"fmt"

	"go-jobapply-automation/internal/schedule"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Validate checks the loaded config for values that would break a run
// (errors) or likely do something the user did not mean (warnings).
func (c *Config) Validate() Validation {
	var res Validation

	known := map[string]bool{"boss": true, "liepin": true}
	for _, name := range c.Platforms {
		if !known[name] {
			res.addErr("platforms: unknown platform %q", name)
			continue
		}
		pc := c.Platform(name)
		if len(pc.Search.Keywords) == 0 {
			res.addWarn("%s.search.keywords is empty; search will return nothing", name)
		}

		a := pc.Apply
		if a.DailyLimit < 0 || a.BatchLimit < 0 || a.MaxScan < 0 {
			res.addErr("%s.apply: limits must not be negative", name)
		}
		if a.IntervalMin < 0 || a.IntervalMax < 0 {
			res.addErr("%s.apply: intervals must not be negative", name)
		}
		if a.IntervalMin > a.IntervalMax {
			res.addErr("%s.apply: interval_min (%d) exceeds interval_max (%d)", name, a.IntervalMin, a.IntervalMax)
		}
		if a.IntervalMin < 10 {
			res.addWarn("%s.apply.interval_min is very low (%ds) and may trigger anti-bot checks", name, a.IntervalMin)
		}
	}

	if c.Schedule.Enabled {
		if len(c.Schedule.Times) == 0 {
			res.addErr("schedule.enabled is true but schedule.times is empty")
		}
		for _, t := range c.Schedule.Times {
			if _, err := schedule.ParseTrigger(t); err != nil {
				res.addErr("schedule.times: %v", err)
			}
		}
		if c.Schedule.CheckInterval < 1 {
			res.addErr("schedule.check_interval must be >= 1 second")
		}
	}

	if len(c.Greetings) == 0 {
		res.addWarn("greetings is empty; applies will be sent without a message")
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		res.addWarn("telegram.token is set but telegram.chat_id is missing; notifications disabled")
	}

	return res
}
