// Package digest computes timezone-aware delivery slots for deferred
// notifications and delivers due digest batches.
package digest

import (
	"time"

	"go.uber.org/zap"

	"estatehub/internal/model"
)

// deliveryHour is the local wall-clock hour digests go out at.
const deliveryHour = 8

// Scheduler computes the next digest delivery slot. The clock is injectable
// so slot arithmetic is reproducible in tests.
type Scheduler struct {
	now    func() time.Time
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the clock. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// NextDigestTime returns the UTC instant of the next delivery slot in the
// given IANA timezone: the next 08:00 wall clock for daily digests, the next
// Monday 08:00 for weekly ones. The slot is always strictly in the future.
//
// An unrecognized timezone never fails the caller; the same arithmetic runs
// against UTC instead. If 08:00 local is skipped or repeated by a DST
// transition, the result is whatever in-location time.Date normalization
// produces.
func (s *Scheduler) NextDigestTime(digestType, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.logger.Warn("Unrecognized timezone, falling back to UTC",
			zap.String("timezone", timezone),
			zap.Error(err),
		)
		loc = time.UTC
	}

	now := s.now().In(loc)

	var slot time.Time
	switch digestType {
	case model.DigestWeekly:
		daysAhead := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		slot = time.Date(now.Year(), now.Month(), now.Day()+daysAhead, deliveryHour, 0, 0, 0, loc)
	default: // daily
		slot = time.Date(now.Year(), now.Month(), now.Day(), deliveryHour, 0, 0, 0, loc)
		if !slot.After(now) {
			slot = time.Date(now.Year(), now.Month(), now.Day()+1, deliveryHour, 0, 0, 0, loc)
		}
	}

	return slot.UTC()
}
