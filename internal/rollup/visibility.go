package rollup

import (
	"strings"

	"github.com/pkg/errors"
)

// AllZero reports whether every count shown on r is zero.
func AllZero(r Row) bool {
	return r.Counts.IsZero()
}

// IconPolicy decides which rows get a drill-down icon.
type IconPolicy struct {
	// MinLevel is the coarsest level that still gets an icon. Grand-total
	// rows are not subject to it.
	MinLevel    Level
	HideAllZero bool
}

func DefaultIconPolicy() IconPolicy {
	return IconPolicy{MinLevel: LevelDepartment, HideAllZero: true}
}

func (p IconPolicy) Show(r Row) bool {
	if r.DrillDown == nil {
		return false
	}
	if p.HideAllZero && AllZero(r) {
		return false
	}
	if r.Kind == RowGrandTotal {
		return true
	}
	return r.Level >= p.MinLevel
}

// Apply sets ShowIcon on every row.
func (p IconPolicy) Apply(rows []Row) {
	for i := range rows {
		rows[i].ShowIcon = p.Show(rows[i])
	}
}

type ScanStatus string

const (
	ScanStatusAll        ScanStatus = "all"
	ScanStatusScanned    ScanStatus = "scanned"
	ScanStatusNotScanned ScanStatus = "not_scanned"
)

var ErrUnknownScanStatus = errors.New("unknown scan status")

func ParseScanStatus(s string) (ScanStatus, error) {
	switch ScanStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScanStatusAll:
		return ScanStatusAll, nil
	case ScanStatusScanned:
		return ScanStatusScanned, nil
	case ScanStatusNotScanned, "notscanned", "not-scanned":
		return ScanStatusNotScanned, nil
	}
	return "", errors.Wrapf(ErrUnknownScanStatus, "%q", s)
}

// Filter keeps total rows and the detail rows matching s.
func (s ScanStatus) Filter(rows []Row) []Row {
	if s == ScanStatusAll || s == "" {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		switch {
		case r.IsTotalRow:
		case s == ScanStatusScanned && r.Scanned > 0:
		case s == ScanStatusNotScanned && r.NotScanned > 0:
		default:
			continue
		}
		out = append(out, r)
	}
	return out
}
