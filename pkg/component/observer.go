package component

import "time"

// Observer is notified after every component render, nested ones included.
// depth is the nesting level, 1 for the top-level component.
type Observer interface {
	ObserveRender(component string, depth int, elapsed time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(component string, depth int, elapsed time.Duration, err error)

// ObserveRender calls f.
func (f ObserverFunc) ObserveRender(component string, depth int, elapsed time.Duration, err error) {
	f(component, depth, elapsed, err)
}

type noopObserver struct{}

func (noopObserver) ObserveRender(string, int, time.Duration, error) {}
