package models

import "time"

// UsageKey identifies one usage counter.
type UsageKey struct {
	Mode    Mode
	Outcome string
}

// UsageCount is the number of generation requests for one mode and outcome.
// No request content is kept.
type UsageCount struct {
	UsageKey
	Count      int64
	LastSeenAt time.Time
}
