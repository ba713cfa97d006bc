package shared

import (
	"errors"
	"fmt"
	"sync"
)

const (
	findingsDetectedMessageConstant    = "findings detected"
	scanCompletedWithErrorsConstant    = "scan completed with errors"
	accumulatedFailureTemplateConstant = "%s: %v"
)

var (
	// ErrFindingsDetected signals that a scan surfaced findings and the process should exit non-zero.
	ErrFindingsDetected = errors.New(findingsDetectedMessageConstant)
	// ErrScanCompletedWithErrors signals that per-repository failures occurred during a scan.
	ErrScanCompletedWithErrors = errors.New(scanCompletedWithErrorsConstant)
)

// ErrorAccumulator records per-repository failures without aborting a scan.
type ErrorAccumulator struct {
	mutex    sync.Mutex
	failures []string
}

// NewErrorAccumulator constructs an empty accumulator.
func NewErrorAccumulator() *ErrorAccumulator {
	return &ErrorAccumulator{}
}

// Record stores a failure associated with the named subject.
func (accumulator *ErrorAccumulator) Record(subject string, failure error) {
	if failure == nil {
		return
	}
	accumulator.mutex.Lock()
	defer accumulator.mutex.Unlock()
	accumulator.failures = append(accumulator.failures, fmt.Sprintf(accumulatedFailureTemplateConstant, subject, failure))
}

// HasFailures reports whether any failures were recorded.
func (accumulator *ErrorAccumulator) HasFailures() bool {
	accumulator.mutex.Lock()
	defer accumulator.mutex.Unlock()
	return len(accumulator.failures) > 0
}

// Failures returns a copy of the recorded failure descriptions in insertion order.
func (accumulator *ErrorAccumulator) Failures() []string {
	accumulator.mutex.Lock()
	defer accumulator.mutex.Unlock()
	copied := make([]string, len(accumulator.failures))
	copy(copied, accumulator.failures)
	return copied
}

// Result returns ErrScanCompletedWithErrors when failures were recorded and nil otherwise.
func (accumulator *ErrorAccumulator) Result() error {
	if accumulator.HasFailures() {
		return ErrScanCompletedWithErrors
	}
	return nil
}
