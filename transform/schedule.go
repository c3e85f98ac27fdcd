package transform

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkpipe/constants"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a standard five-field cron expression or a descriptor such as @hourly.
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", expr)
	}
	return s, nil
}

// Validate checks the values that the local launcher can verify.
func (d DefaultArgs) Validate() error {
	if _, err := d.GetStartDate(); err != nil {
		return err
	}
	if d.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if _, err := d.GetRetryDelay(); err != nil {
		return err
	}
	return nil
}

func (d DefaultArgs) GetStartDate() (time.Time, error) {
	t, err := time.Parse(constants.TimeFormatDs, d.StartDate)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid start date %q", d.StartDate)
	}
	return t, nil
}

func (d DefaultArgs) GetRetryDelay() (time.Duration, error) {
	if d.RetryDelay == "" {
		return 0, nil
	}
	r, err := time.ParseDuration(d.RetryDelay)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid retry delay %q", d.RetryDelay)
	}
	return r, nil
}

// LogicalDate returns the most recent schedule tick at or before now.
// Without a schedule, or before the first tick after startDate, now truncated to the minute is used.
func (p *PipelineDefinition) LogicalDate(now time.Time) (time.Time, error) {
	now = now.UTC()
	if p.Schedule == "" {
		return now.Truncate(time.Minute), nil
	}
	s, err := ParseSchedule(p.Schedule)
	if err != nil {
		return time.Time{}, err
	}
	start, err := p.DefaultArgs.GetStartDate()
	if err != nil {
		return time.Time{}, err
	}
	// Cron schedules only expose Next(), so search windows of growing size ending at now.
	var last time.Time
	for _, window := range []time.Duration{time.Hour, 24 * time.Hour, 32 * 24 * time.Hour, 367 * 24 * time.Hour} {
		cur := now.Add(-window)
		if cur.Before(start) {
			cur = start.Add(-time.Second)
		}
		for next := s.Next(cur); !next.IsZero() && !next.After(now); next = s.Next(next) {
			last = next
		}
		if !last.IsZero() {
			break
		}
	}
	if last.IsZero() {
		return now.Truncate(time.Minute), nil
	}
	return last, nil
}
