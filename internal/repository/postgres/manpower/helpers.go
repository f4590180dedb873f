package manpower

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"manpower/backend/foundation/web"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// MaxDetailDays bounds how many work dates a single detail request may expand to.
const MaxDetailDays = 62

const managementGroup = "Management"

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}

	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing clock %q", s)
	}

	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// OverIn returns how far a first scan lies past threshold as HH:MM:SS, or
// "-" when it is on time, missing or unreadable.
func OverIn(firstScan *string, threshold time.Duration) string {
	if firstScan == nil {
		return "-"
	}

	s := strings.TrimSpace(*firstScan)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > 8 {
		s = s[:8]
	}

	at, err := ParseClock(s)
	if err != nil || at <= threshold {
		return "-"
	}

	diff := at - threshold
	h := int(diff / time.Hour)
	m := int(diff % time.Hour / time.Minute)
	sec := int(diff % time.Minute / time.Second)

	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// ExpandDates lists every date from start to end inclusive.
func ExpandDates(start, end date.Date) ([]string, error) {
	if end.Before(start.Time) {
		return nil, web.NewRequestError(errors.New("end date is before start date"), http.StatusBadRequest)
	}

	var dates []string
	for d := start.Time; !d.After(end.Time); d = d.AddDate(0, 0, 1) {
		if len(dates) == MaxDetailDays {
			return nil, web.NewRequestError(errors.Errorf("date range longer than %d days", MaxDetailDays), http.StatusBadRequest)
		}
		dates = append(dates, date.Date{Time: d}.String())
	}

	return dates, nil
}

// GroupDepartments folds detail rows into departments in first-seen order,
// listing each person once.
func GroupDepartments(rows []DepartmentRow) []Department {
	var (
		list  []Department
		index = make(map[string]int)
		seen  = make(map[string]map[string]bool)
	)

	for _, row := range rows {
		i, ok := index[row.DeptCode]
		if !ok {
			i = len(list)
			index[row.DeptCode] = i
			seen[row.DeptCode] = make(map[string]bool)
			list = append(list, Department{
				ID:        row.DeptCode,
				Name:      row.DeptName,
				Employees: []Employee{},
			})
		}

		if row.PersonCode == "" || seen[row.DeptCode][row.PersonCode] {
			continue
		}
		seen[row.DeptCode][row.PersonCode] = true

		list[i].Employees = append(list[i].Employees, Employee{
			ID:      row.PersonCode,
			Name:    row.FullName,
			WeComID: row.WeComUserID,
			IsHOD:   row.PersonGroup == managementGroup,
		})
	}

	return list
}

// BuildDetailResponse groups detail rows by date and by department. Rows
// without a name are left out of the groups.
func BuildDetailResponse(details []Detail) DetailResponse {
	response := DetailResponse{
		DeptName:   "not found",
		DataByDate: make(map[string][]Detail),
		Detail:     details,
	}
	if response.Detail == nil {
		response.Detail = []Detail{}
	}
	if len(details) > 0 {
		response.DeptName = details[0].DeptName
	}

	groups := make(map[string]*DetailGroup)
	for _, d := range details {
		response.DataByDate[d.WorkDate] = append(response.DataByDate[d.WorkDate], d)

		if strings.TrimSpace(d.FullName) == "" {
			continue
		}

		key := d.WorkDate + "\x00" + d.DeptCode
		g, ok := groups[key]
		if !ok {
			g = &DetailGroup{WorkDate: d.WorkDate, DeptCode: d.DeptCode, Scanned: []Detail{}, NotScanned: []Detail{}}
			groups[key] = g
		}

		if d.FirstScanTime != nil && strings.TrimSpace(*d.FirstScanTime) != "" {
			g.Scanned = append(g.Scanned, d)
		} else {
			g.NotScanned = append(g.NotScanned, d)
		}
	}

	response.Groups = make([]DetailGroup, 0, len(groups))
	for _, g := range groups {
		response.Groups = append(response.Groups, *g)
	}
	sort.Slice(response.Groups, func(i, j int) bool {
		if response.Groups[i].WorkDate != response.Groups[j].WorkDate {
			return response.Groups[i].WorkDate < response.Groups[j].WorkDate
		}
		return response.Groups[i].DeptCode < response.Groups[j].DeptCode
	})

	return response
}
