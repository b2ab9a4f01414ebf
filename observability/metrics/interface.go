// Package metrics records what the dispatcher resolves and serves
package metrics

import (
	"time"
)

// Collector receives dispatcher observations
type Collector interface {
	// RecordResolution counts one resolution by outcome: "resolved",
	// "redirect" or the label of the failure code
	RecordResolution(outcome string)

	// RecordDispatch observes one invoked handler method
	RecordDispatch(handler, method string, status int, duration time.Duration)

	// RecordHTTPRequest observes one served request
	RecordHTTPRequest(method string, status int, duration time.Duration)

	// RecordInvalidation counts handler files invalidated by the watcher
	RecordInvalidation()
}

// NoOpCollector is a no-op implementation of Collector
type NoOpCollector struct{}

func (NoOpCollector) RecordResolution(string)                           {}
func (NoOpCollector) RecordDispatch(string, string, int, time.Duration) {}
func (NoOpCollector) RecordHTTPRequest(string, int, time.Duration)      {}
func (NoOpCollector) RecordInvalidation()                               {}
