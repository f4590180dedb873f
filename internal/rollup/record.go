package rollup

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RawRecord is one row as returned by the manpower view, every column as text.
type RawRecord struct {
	WorkDate     string `json:"workdate"`
	DeptCode     string `json:"deptcode"`
	DeptName     string `json:"deptname"`
	CountScan    string `json:"countscan"`
	CountNotScan string `json:"countnotscan"`
	CountPerson  string `json:"countperson"`
	DeptSBU      string `json:"deptsbu"`
	DeptSTD      string `json:"deptstd"`
}

// Record is the validated form of RawRecord.
type Record struct {
	WorkDate string
	Code     string
	Name     string
	Counts   Counts
	SBU      string
	STD      string
}

type Counts struct {
	Scanned    int `json:"scanned"`
	NotScanned int `json:"notScanned"`
	Person     int `json:"person"`
}

func (c Counts) Add(o Counts) Counts {
	return Counts{
		Scanned:    c.Scanned + o.Scanned,
		NotScanned: c.NotScanned + o.NotScanned,
		Person:     c.Person + o.Person,
	}
}

func (c Counts) IsZero() bool {
	return c.Scanned == 0 && c.NotScanned == 0 && c.Person == 0
}

func (r RawRecord) Record() Record {
	return Record{
		WorkDate: strings.TrimSpace(r.WorkDate),
		Code:     strings.TrimSpace(r.DeptCode),
		Name:     strings.TrimSpace(r.DeptName),
		Counts: Counts{
			Scanned:    ParseCount(r.CountScan),
			NotScanned: ParseCount(r.CountNotScan),
			Person:     ParseCount(r.CountPerson),
		},
		SBU: strings.TrimSpace(r.DeptSBU),
		STD: strings.TrimSpace(r.DeptSTD),
	}
}

func FromRaw(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))
	for _, r := range raws {
		records = append(records, r.Record())
	}
	return records
}

// ParseCount reads a non-negative count. Unparsable, NaN, infinite,
// negative and out of range values are zero.
func ParseCount(s string) int {
	v, ok := parseInt(s)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// parseInt reads s as an integer, accepting float notation and truncating
// it. Values that do not fit in an int are rejected.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.Atoi(s)
	if err == nil {
		return v, true
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// ParseMeasure reads an SBU/STD value: the whole value when it is numeric,
// otherwise its trailing run of digits.
func ParseMeasure(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if _, err := strconv.ParseFloat(s, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		return parseInt(s)
	}

	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}

	v, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
