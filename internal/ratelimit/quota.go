package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Period derives the quota-window key for an instant. Two instants in the
// same window produce the same key.
type Period func(t time.Time) string

// DailyPeriod keys windows by UTC calendar day.
func DailyPeriod(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthlyPeriod keys windows by UTC calendar month.
func MonthlyPeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Quota is a calendar-window request budget. The counter resets when the
// period key changes between calls, not on a timer, so an idle process
// pays nothing for the reset.
type Quota struct {
	mu        sync.Mutex
	limit     int
	used      int
	periodKey string
	period    Period
	clock     clockwork.Clock
}

// NewQuota creates a quota of limit requests per period window. A limit
// of zero or less means unlimited. Pass nil for clock to use real time.
func NewQuota(limit int, period Period, clock clockwork.Clock) *Quota {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Quota{
		limit:     limit,
		period:    period,
		periodKey: period(clock.Now()),
		clock:     clock,
	}
}

// Remaining reports how many requests are left in the current window.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	if q.limit <= 0 {
		return 1
	}
	return q.limit - q.used
}

// Spend consumes n requests from the window. It reports false, consuming
// nothing, when the window cannot cover n.
func (q *Quota) Spend(n int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rolloverLocked()
	if q.limit <= 0 {
		return true
	}
	if q.used+n > q.limit {
		return false
	}
	q.used += n
	return true
}

func (q *Quota) rolloverLocked() {
	key := q.period(q.clock.Now())
	if key != q.periodKey {
		q.periodKey = key
		q.used = 0
	}
}
