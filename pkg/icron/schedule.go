package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// maxLookback bounds the search for the previous trigger.
const maxLookback = 366 * 24 * time.Hour

type TriggerInfo struct {
	Next       time.Time `json:"next"`
	Last       time.Time `json:"last"`
	Expression string    `json:"expression"`

	TimeSinceLast time.Duration `json:"time_since_last"`
	TimeUntilNext time.Duration `json:"time_until_next"`
}

// GetTriggerInfo reports the triggers of a standard five field expression
// around refTime. Last is zero when no trigger happened within a year.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	nextTime := schedule.Next(refTime)
	prevTime := previous(schedule, refTime)

	info := &TriggerInfo{
		Expression:    cronExpr,
		Next:          nextTime,
		Last:          prevTime,
		TimeUntilNext: nextTime.Sub(refTime),
	}
	if !prevTime.IsZero() {
		info.TimeSinceLast = refTime.Sub(prevTime)
	}
	return info, nil
}

// previous widens the window until it holds a trigger, then walks forward
// to the last one not after refTime.
func previous(schedule cron.Schedule, refTime time.Time) time.Time {
	for window := time.Hour; window <= maxLookback; window *= 2 {
		t := schedule.Next(refTime.Add(-window))
		if t.IsZero() || t.After(refTime) {
			continue
		}
		for {
			n := schedule.Next(t)
			if n.IsZero() || n.After(refTime) {
				return t
			}
			t = n
		}
	}
	return time.Time{}
}
