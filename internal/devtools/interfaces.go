package devtools

import (
	"time"

	"codelingo/internal/router"
	"codelingo/internal/state"
)

type Demo interface {
	Resolve(name string) (Scenario, error)
	Names() []string
}

// Scenario rewrites a state into a known shape for screenshots and manual
// testing. Route names the screen worth looking at afterwards; a map
// route means the selected course.
type Scenario struct {
	Name        string
	Description string
	Route       router.Name
	apply       func(st *state.AppState, now time.Time)
}

// Apply mutates st in place.
func (s Scenario) Apply(st *state.AppState, now time.Time) {
	if s.apply != nil {
		s.apply(st, now)
	}
}
