package metrics

import (
	"time"
)

// Collector records job, cold store and lookup metrics.
type Collector interface {
	// Jobs
	RecordJobRun(job string, outcome string, duration time.Duration)
	RecordJobSkipped(job string)
	RecordAccountProcessed(job string, result string)
	RecordTransferDegraded()

	// Lookup resolver
	RecordLookup(source string)

	// Cold store
	RecordColdStoreCall(operation string, success bool, duration time.Duration)
	RecordCircuitState(name string, state CircuitState)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards everything.
type NoOpCollector struct{}

var _ Collector = NoOpCollector{}

func (NoOpCollector) RecordJobRun(job string, outcome string, duration time.Duration) {}
func (NoOpCollector) RecordJobSkipped(job string)                                     {}
func (NoOpCollector) RecordAccountProcessed(job string, result string)                {}
func (NoOpCollector) RecordTransferDegraded()                                         {}
func (NoOpCollector) RecordLookup(source string)                                      {}
func (NoOpCollector) RecordColdStoreCall(operation string, success bool, duration time.Duration) {
}
func (NoOpCollector) RecordCircuitState(name string, state CircuitState) {}
