package game

import (
	"sync"
	"time"
)

// Scheduler runs a callback once after a delay.
// Scheduled callbacks can't be cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func())

// AfterFunc calls fn(d, f).
func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) {
	fn(d, f)
}

// TimerScheduler schedules callbacks with time.AfterFunc.
//
// Each callback runs while holding Locker, the same lock the owner of the
// Controller holds when calling it. OnFire, if set, is called after the
// lock is released, typically to re-render or broadcast the board.
type TimerScheduler struct {
	Locker sync.Locker
	OnFire func()
}

// AfterFunc implements Scheduler.
func (s *TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		s.Locker.Lock()
		f()
		s.Locker.Unlock()
		if s.OnFire != nil {
			s.OnFire()
		}
	})
}
