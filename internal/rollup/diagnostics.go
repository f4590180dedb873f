package rollup

import (
	"fmt"

	"github.com/pkg/errors"
)

type WarningKind string

const (
	WarningMalformedCode    WarningKind = "malformed_code"
	WarningMissingKey       WarningKind = "missing_key"
	WarningInconsistentName WarningKind = "inconsistent_name"
)

type Warning struct {
	Kind     WarningKind `json:"kind"`
	WorkDate string      `json:"workDate,omitempty"`
	Code     string      `json:"departmentCode,omitempty"`
	Message  string      `json:"message"`
}

// Diagnostics collects recoverable data-quality problems found while
// building a report. None of them stop the build.
type Diagnostics struct {
	SkippedRecordCount int       `json:"skippedRecordCount"`
	Warnings           []Warning `json:"warnings"`
}

func (d *Diagnostics) warn(kind WarningKind, workDate, code, format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, Warning{
		Kind:     kind,
		WorkDate: workDate,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Count returns the number of warnings of kind.
func (d Diagnostics) Count(kind WarningKind) int {
	n := 0
	for _, w := range d.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// ErrStructuralCycle means a node was reached again while its own subtree was
// still being summed. Trees built by BuildHierarchy never contain one.
var ErrStructuralCycle = errors.New("structural cycle in department hierarchy")

type StructuralCycleError struct {
	WorkDate string
	Code     string
}

func (e *StructuralCycleError) Error() string {
	return fmt.Sprintf("%s: date %s, code %s", ErrStructuralCycle, e.WorkDate, e.Code)
}

func (e *StructuralCycleError) Unwrap() error {
	return ErrStructuralCycle
}
