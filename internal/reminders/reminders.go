// Package reminders fires check-in notifications when an isolation period
// ends. It fulfils the reminder port the status model schedules against.
package reminders

import (
	"log/slog"
	"sync"
	"time"
)

// Handler receives the instant a reminder was scheduled for once it fires.
type Handler func(at time.Time)

// Scheduler keeps at most one pending check-in reminder. Scheduling again
// replaces the pending one; there is only ever one governing isolation
// period.
type Scheduler struct {
	logger  *slog.Logger
	handler Handler

	mu    sync.Mutex
	timer *time.Timer
}

// New constructs a scheduler that invokes handler when a reminder fires.
func New(logger *slog.Logger, handler Handler) *Scheduler {
	return &Scheduler{logger: logger, handler: handler}
}

// ScheduleCheckInReminder arranges for the handler to run at the given
// instant. An instant already in the past fires immediately.
func (s *Scheduler) ScheduleCheckInReminder(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.logger.Debug("check-in reminder scheduled", "at", at)
	s.timer = time.AfterFunc(delay, func() {
		s.handler(at)
	})
}

// Cancel drops any pending reminder.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
