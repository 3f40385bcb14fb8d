package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FaultKind is a category of measurement failure. The names match the
// error_simulation.error_types keys of the configuration surface.
type FaultKind string

const (
	FaultTimeout           FaultKind = "timeout"
	FaultConnectionRefused FaultKind = "connection_refused"
	FaultEmptyResponse     FaultKind = "empty_response"
	FaultCorruptData       FaultKind = "corrupt_data"
	FaultInvalidValue      FaultKind = "invalid_value"
)

// FaultKinds lists every recognized fault kind.
var FaultKinds = []FaultKind{
	FaultTimeout,
	FaultConnectionRefused,
	FaultEmptyResponse,
	FaultCorruptData,
	FaultInvalidValue,
}

// Valid reports whether k is a recognized fault kind.
func (k FaultKind) Valid() bool {
	for _, known := range FaultKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ProtocolError is a failure of the one-request-one-response exchange
// with a device endpoint.
type ProtocolError struct {
	Kind     FaultKind
	Endpoint string
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (%s) from %s: %s", e.Kind, e.Endpoint, e.Message)
}

// SimulatedFault is a deliberately injected failure. It carries the
// same kinds as ProtocolError but is distinguishable so callers can
// tell a real network failure from a synthetic one.
type SimulatedFault struct {
	Kind    FaultKind
	Message string
}

func (e *SimulatedFault) Error() string {
	return fmt.Sprintf("simulated fault (%s): %s", e.Kind, e.Message)
}

// ValidationError is a non-numeric or type-mismatched value surfacing
// after fault injection.
type ValidationError struct {
	Kind    FaultKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid measurement (%s): %s", e.Kind, e.Message)
}

// NotFoundError is returned when an explicitly requested test result
// does not exist in storage. Unlike a corrupt file skipped during a
// directory scan, a missing requested id is a hard error.
type NotFoundError struct {
	TestID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("test result not found: %s", e.TestID)
}

// ErrInsufficientSamples is returned by analysis when the sample set is
// too small for variance-dependent statistics.
var ErrInsufficientSamples = errors.New("analysis requires at least 2 measurements")

// FaultKindOf extracts the fault kind from any error in err's chain.
func FaultKindOf(err error) (FaultKind, bool) {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	var sf *SimulatedFault
	if errors.As(err, &sf) {
		return sf.Kind, true
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// ErrorEvent records one fault caught during a collection session.
type ErrorEvent struct {
	DeviceKind string    `json:"ammeter_type"`
	FaultKind  FaultKind `json:"error_type"`
	Message    string    `json:"error_message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Errors is an error type that concatenates multiple errors.
type Errors []error

// Error returns a string containing all the errors in e.
func (e Errors) Error() string {
	var errs []string
	for _, err := range e {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return strings.Join(errs, "; ")
}

// Empty returns whether e has any non-nil errors in it.
func (e Errors) Empty() bool {
	for _, err := range e {
		if err != nil {
			return false
		}
	}
	return true
}
