package idgen

import "time"

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewNow generates an id stamped with the current wall-clock time.
func NewNow(prefix string) string {
	return New(prefix, nowMillis())
}
