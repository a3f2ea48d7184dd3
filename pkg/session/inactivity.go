package session

import (
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/clockx"
)

// EventKind is a user interaction that counts as activity.
type EventKind string

const (
	EventPointer EventKind = "pointer"
	EventKey     EventKind = "key"
	EventScroll  EventKind = "scroll"
	EventTouch   EventKind = "touch"
)

// ParseEventKind accepts the qualifying interaction kinds.
func ParseEventKind(s string) (EventKind, bool) {
	switch k := EventKind(s); k {
	case EventPointer, EventKey, EventScroll, EventTouch:
		return k, true
	default:
		return "", false
	}
}

// inactivityMonitor keeps the rolling activity deadline.
//
// Events only record the time of the latest activity (lock-free, from any
// goroutine), so a burst costs one timer re-arm at most. The single timer
// is owned by the manager goroutine: when it fires it either re-arms at the
// newer deadline or reports the timeout. gen invalidates firings from
// timers that were replaced or stopped.
type inactivityMonitor struct {
	clock   clockx.Clock
	timeout time.Duration

	active atomic.Bool
	last   atomic.Int64 // unix nanos of the latest activity

	// Manager goroutine only.
	gen   uint64
	timer clockx.Timer
}

func newInactivityMonitor(c clockx.Clock, timeout time.Duration) *inactivityMonitor {
	return &inactivityMonitor{clock: c, timeout: timeout}
}

// start begins a monitoring period at now. fire is invoked from the timer
// with the generation it was armed for.
func (im *inactivityMonitor) start(now time.Time, fire func(gen uint64)) {
	im.stop()
	im.last.Store(now.UnixNano())
	im.active.Store(true)
	im.arm(now, fire)
}

// touch records activity. It reports false when the monitor is stopped.
func (im *inactivityMonitor) touch() bool {
	if !im.active.Load() {
		return false
	}
	now := im.clock.Now().UnixNano()
	for {
		prev := im.last.Load()
		if now <= prev || im.last.CompareAndSwap(prev, now) {
			return true
		}
	}
}

// deadline is the instant before which no inactivity logout happens, or
// the zero time when stopped.
func (im *inactivityMonitor) deadline() time.Time {
	if !im.active.Load() {
		return time.Time{}
	}
	return time.Unix(0, im.last.Load()).Add(im.timeout)
}

// check handles a timer firing. It reports true exactly once per monitoring
// period, when the deadline has passed; otherwise it re-arms at the
// current deadline.
func (im *inactivityMonitor) check(gen uint64, now time.Time, fire func(gen uint64)) bool {
	if gen != im.gen || !im.active.Load() {
		return false
	}
	if now.Before(im.deadline()) {
		im.arm(now, fire)
		return false
	}
	im.stop()
	return true
}

// stop is idempotent.
func (im *inactivityMonitor) stop() {
	im.active.Store(false)
	im.gen++
	if im.timer != nil {
		im.timer.Stop()
		im.timer = nil
	}
}

func (im *inactivityMonitor) arm(now time.Time, fire func(gen uint64)) {
	if im.timer != nil {
		im.timer.Stop()
	}
	im.gen++
	gen := im.gen
	im.timer = im.clock.AfterFunc(im.deadline().Sub(now), func() { fire(gen) })
}
