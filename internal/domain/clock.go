package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessedAt. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source used by ParseRawEvent. Pass nil to
// restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
