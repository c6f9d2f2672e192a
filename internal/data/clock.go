package data

import "time"

// Clock supplies the timestamps repositories write. Values are stored in UTC.
type Clock func() time.Time

// FixedClock pins every write to t. Used by repository tests.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
