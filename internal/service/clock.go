package service

import "time"

// Clock abstracts wall time so sweeps and defaults are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }
