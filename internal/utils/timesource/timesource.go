package timesource

import (
	"time"

	"go.uber.org/atomic"
)

type (
	// TimeSource provides the current time to instruments and tests.
	TimeSource interface {
		Now() time.Time
	}

	realTimeSource struct{}

	// tickingTimeSource starts at the unix epoch and advances by one second on every call.
	tickingTimeSource struct {
		elapsed *atomic.Duration
	}
)

func NewRealTimeSource() TimeSource {
	return realTimeSource{}
}

func (realTimeSource) Now() time.Time {
	return time.Now()
}

// NewTickingTimeSource returns a deterministic TimeSource, so that every measured operation lasts one second.
func NewTickingTimeSource() TimeSource {
	return &tickingTimeSource{
		elapsed: atomic.NewDuration(0),
	}
}

func (s *tickingTimeSource) Now() time.Time {
	return time.Unix(0, 0).Add(s.elapsed.Add(time.Second)).UTC()
}
