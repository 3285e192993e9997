package service

import "time"

// Recorder is an optional metrics capability injected into the API boundary.
// The default is a no-op; deployments with an APM agent plug their own in.
type Recorder interface {
	RecordMetric(name string, value float64)
	RecordTiming(name string, d time.Duration)
	RecordError(err error)
}

type NoopRecorder struct{}

func (NoopRecorder) RecordMetric(string, float64) {}

func (NoopRecorder) RecordTiming(string, time.Duration) {}

func (NoopRecorder) RecordError(error) {}
