package rollup

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type RowKind string

const (
	RowDetail     RowKind = "detail"
	RowTotal      RowKind = "total"
	RowGrandTotal RowKind = "grand_total"
)

// DrillDown identifies the departments a row's detail view should list.
type DrillDown struct {
	WorkDate string   `json:"workDate"`
	Codes    []string `json:"codes"`
}

type Row struct {
	Kind        RowKind `json:"kind"`
	WorkDate    string  `json:"workDate"`
	Code        string  `json:"departmentCode"`
	Name        string  `json:"departmentName"`
	Level       Level   `json:"level"`
	SBU         string  `json:"sbu"`
	STD         string  `json:"std"`
	IsTotalRow  bool    `json:"isTotalRow"`
	Synthesized bool    `json:"synthesized"`
	Counts
	DrillDown *DrillDown `json:"drillDown,omitempty"`
	ShowIcon  bool       `json:"showIcon"`
}

// totalPrefixes are stripped from a base name before a total label is added.
// Longer Thai prefixes come before "รวม" so the whole word is removed.
var totalPrefixes = []string{
	"รวมโรงงาน",
	"รวมฝ่าย",
	"รวมแผนก",
	"รวม",
	"Grand Total ",
	"Total ",
}

// Flatten walks each work date in pre-order and emits a detail row per node,
// a total row after the descendants of qualifying nodes and a grand-total
// row per date.
func Flatten(f *Forest, calc *Calculator, orgName string) ([]Row, error) {
	var rows []Row

	for _, d := range f.Dates() {
		grand := Totals{}

		for _, root := range f.Roots(d) {
			var err error
			if rows, err = flattenNode(rows, root, calc); err != nil {
				return nil, err
			}

			t, err := calc.Rollup(root)
			if err != nil {
				return nil, err
			}
			grand.Counts = grand.Counts.Add(t.Counts)
			grand.SBU += t.SBU
			grand.STD += t.STD
			grand.HasSBU = grand.HasSBU || t.HasSBU
			grand.HasSTD = grand.HasSTD || t.HasSTD
			grand.Codes = append(grand.Codes, t.Codes...)
		}

		if grand.IsZero() {
			continue
		}

		rows = append(rows, Row{
			Kind:       RowGrandTotal,
			WorkDate:   d,
			Name:       strings.TrimSpace("All " + orgName),
			Level:      LevelAll,
			SBU:        measure(grand.SBU, grand.HasSBU),
			STD:        measure(grand.STD, grand.HasSTD),
			IsTotalRow: true,
			Counts:     grand.Counts,
			DrillDown:  drillDown(d, grand.Codes),
		})
	}

	return rows, nil
}

func flattenNode(rows []Row, n *Node, calc *Calculator) ([]Row, error) {
	rows = append(rows, detailRow(n))

	for _, child := range n.Children {
		var err error
		if rows, err = flattenNode(rows, child, calc); err != nil {
			return nil, err
		}
	}

	if !HasTotalRow(n) {
		return rows, nil
	}

	t, err := calc.Rollup(n)
	if err != nil {
		return nil, err
	}

	return append(rows, totalRow(n, t)), nil
}

// HasTotalRow reports whether n is followed by a subtotal row: factories and
// divisions always, departments only when they have sub-units.
func HasTotalRow(n *Node) bool {
	switch n.Level {
	case LevelFactory, LevelDivision:
		return true
	case LevelDepartment:
		return len(n.Children) > 0
	}
	return false
}

func detailRow(n *Node) Row {
	r := Row{
		Kind:        RowDetail,
		WorkDate:    n.WorkDate,
		Code:        n.Code,
		Name:        n.Name,
		Level:       n.Level,
		Synthesized: n.Synthesized,
		Counts:      n.Counts,
	}

	if n.Level >= LevelDepartment {
		r.SBU = n.SBU
		r.STD = n.STD
	}
	if !n.Synthesized {
		r.DrillDown = &DrillDown{WorkDate: n.WorkDate, Codes: []string{n.Code}}
	}

	return r
}

func totalRow(n *Node, t Totals) Row {
	base := StripTotalPrefix(n.Name)

	label := "Total "
	if n.Level == LevelFactory {
		label = "Grand Total "
	}

	r := Row{
		Kind:        RowTotal,
		WorkDate:    n.WorkDate,
		Code:        n.Code,
		Name:        label + base,
		Level:       n.Level,
		SBU:         measure(t.SBU, t.HasSBU),
		STD:         measure(t.STD, t.HasSTD),
		IsTotalRow:  true,
		Synthesized: n.Synthesized,
		Counts:      t.Counts,
	}

	if n.Level == LevelDepartment {
		r.DrillDown = drillDown(n.WorkDate, t.Codes)
	}

	return r
}

// StripTotalPrefix removes any existing total label from name so that a new
// one can be added without doubling it.
func StripTotalPrefix(name string) string {
	s := strings.TrimSpace(norm.NFC.String(name))

	for {
		stripped := false
		for _, p := range totalPrefixes {
			if strings.HasPrefix(s, p) {
				s = strings.TrimSpace(strings.TrimPrefix(s, p))
				stripped = true
				break
			}
		}
		if !stripped {
			return s
		}
	}
}

func drillDown(workDate string, codes []string) *DrillDown {
	if len(codes) == 0 {
		return nil
	}

	list := make([]string, len(codes))
	copy(list, codes)

	return &DrillDown{WorkDate: workDate, Codes: list}
}

func measure(v int, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}
