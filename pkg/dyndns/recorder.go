package dyndns

import "time"

// Labels used when reporting to a Recorder.
const (
	OpCreate = "create"
	OpDelete = "delete"

	DirectionForward = "forward"
	DirectionReverse = "reverse"

	ResultSuccess  = "success"
	ResultError    = "error"
	ResultNotFound = "not_found"

	LookupName    = "name"
	LookupAddress = "address"
)

// Recorder receives one observation per update message and per lookup.
// internal/metrics provides the Prometheus implementation.
type Recorder interface {
	RecordUpdate(op, direction, result string, d time.Duration)
	RecordLookup(kind, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordUpdate(string, string, string, time.Duration) {}
func (nopRecorder) RecordLookup(string, string)                        {}
