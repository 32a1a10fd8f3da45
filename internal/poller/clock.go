package poller

import "time"

// Clock abstracts the wait between status checks so poll loops can be driven
// deterministically.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
