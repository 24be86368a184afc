package enrich

import (
	"errors"
	"fmt"

	"github.com/felixhommels/mcsbt-capstone-be/internal/ingestion"
)

// Failure kinds. Telemetry kinds are shared with the resolver so errors.Is
// matches across packages.
var (
	ErrStaleRequest         = ingestion.ErrStaleRequest
	ErrTelemetryNotFound    = ingestion.ErrTelemetryNotFound
	ErrInvalidTimeSpec      = ingestion.ErrInvalidTimeSpec
	ErrReferenceDataMissing = errors.New("reference data missing")
)

var kinds = []error{ErrStaleRequest, ErrTelemetryNotFound, ErrInvalidTimeSpec, ErrReferenceDataMissing}

// Error is a failed enrichment. Kind is one of the Err* sentinels, or nil
// for infrastructure failures.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the failure kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func wrap(op string, err error) *Error {
	e := &Error{Op: op, Err: err}
	for _, k := range kinds {
		if errors.Is(err, k) {
			e.Kind = k
			break
		}
	}
	return e
}

// outcome labels an error for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrStaleRequest):
		return "stale"
	case errors.Is(err, ErrTelemetryNotFound):
		return "not_found"
	case errors.Is(err, ErrReferenceDataMissing):
		return "reference_missing"
	case errors.Is(err, ErrInvalidTimeSpec):
		return "invalid_time"
	default:
		return "error"
	}
}
