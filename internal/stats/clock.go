package stats

import "time"

// Clock is sampled once per query so every window in a query shares one "now".
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type FixedClock struct {
	CurrentTime time.Time
}

func (c FixedClock) Now() time.Time {
	return c.CurrentTime
}
