package model

import "time"

// EventTimeSource records how an event time was established.
type EventTimeSource string

const (
	EventTimeExplicit  EventTimeSource = "explicit"
	EventTimeInferred  EventTimeSource = "inferred"
	EventTimeUserStated EventTimeSource = "user_stated"
)

// ContentTimeType classifies a resolved content-time mention.
type ContentTimeType string

const (
	ContentTimeHistorical ContentTimeType = "historical"
	ContentTimeRelative   ContentTimeType = "relative"
	ContentTimeApproximate ContentTimeType = "approximate"
)

// EventTime is the (optional) time the remembered event itself occurred.
type EventTime struct {
	At         time.Time
	Confidence float64
	Source     EventTimeSource
}

// ContentTimeMention is a single resolved time reference found in body text.
type ContentTimeMention struct {
	Resolved     time.Time
	OriginalText string
	Type         ContentTimeType
	Confidence   float64
}

// Temporal is the four-timestamp model attached to a node. IngestionTime is
// always present; the rest are optional.
type Temporal struct {
	IngestionTime     time.Time
	EventTime         *EventTime
	ContentTimes      []ContentTimeMention
	ReferencePatterns []string
}
