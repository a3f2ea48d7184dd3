package session

import (
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/idx"
)

// Transition describes one state change. Refreshes are reported as an
// Authenticated to Authenticated transition with ReasonRefreshed.
type Transition struct {
	SessionID idx.ID
	From      State
	To        State
	Reason    Reason
	Err       error
	At        time.Time
}

// Observer is notified of every transition, on the manager goroutine and
// in order. Implementations must return quickly and must not call back
// into the Manager.
type Observer interface {
	OnTransition(Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

func (f ObserverFunc) OnTransition(t Transition) { f(t) }
