package lib

import "time"

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
