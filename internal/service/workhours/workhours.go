// Package workhours builds the weekly work-hour report from the HR backend.
package workhours

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/hrbackend"
	"manpower/backend/internal/service/export"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultLimit     = 20
	DefaultHourLimit = 60

	unknownDeptCode = "00000000"
)

type Source interface {
	GetEmployeeHours(ctx context.Context) ([]hrbackend.EmployeeHours, error)
	GetEmployeeActive(ctx context.Context) ([]hrbackend.EmployeeActive, error)
}

type Service struct {
	source    Source
	hourLimit float64
	log       *zap.Logger
}

// NewService returns a report service. hourLimit is the weekly limit above
// which an employee counts as overtime.
func NewService(source Source, hourLimit float64, log *zap.Logger) *Service {
	if hourLimit <= 0 {
		hourLimit = DefaultHourLimit
	}
	return &Service{source: source, hourLimit: hourLimit, log: log}
}

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusAny:
		return StatusAny, nil
	case StatusNormal:
		return StatusNormal, nil
	case StatusOvertime:
		return StatusOvertime, nil
	}
	return "", web.NewRequestError(errors.Errorf("unknown status %q", s), http.StatusBadRequest)
}

func (f Filter) validate() error {
	if f.Week < 0 || f.Week > Weeks {
		return web.NewRequestError(errors.Errorf("week must be between 0 and %d", Weeks), http.StatusBadRequest)
	}
	if f.Page < 0 || f.Limit < 0 {
		return web.NewRequestError(errors.New("page and limit must not be negative"), http.StatusBadRequest)
	}
	return nil
}

func (s *Service) load(ctx context.Context) ([]Employee, error) {
	hours, err := s.source.GetEmployeeHours(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading employee hours")
	}

	details, err := s.source.GetEmployeeActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading active employees")
	}

	return Merge(hours, details), nil
}

func (s *Service) List(ctx context.Context, filter Filter) (Result, error) {
	if err := filter.validate(); err != nil {
		return Result{}, err
	}

	all, err := s.load(ctx)
	if err != nil {
		return Result{}, err
	}

	filtered := s.Apply(all, filter)
	page, limit, pages := paginate(len(filtered), filter.Page, filter.Limit)

	start := (page - 1) * limit
	end := start + limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	s.log.Debug("work hours listed",
		zap.Int("employees", len(all)),
		zap.Int("matched", len(filtered)),
		zap.Int("week", filter.Week))

	return Result{
		Employees: filtered[start:end],
		Summary:   s.Summarize(filtered, filter.Week),
		Options:   BuildOptions(all, filter.Factory, filter.Division),
		Page:      page,
		Limit:     limit,
		Total:     len(filtered),
		Pages:     pages,
		Week:      filter.Week,
		HourLimit: s.hourLimit,
	}, nil
}

// Export returns every employee matching filter as an xlsx workbook.
func (s *Service) Export(ctx context.Context, filter Filter) ([]byte, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return export.XLSX(s.Table(s.Apply(all, filter), filter.Week))
}

// Merge joins hours with employee details on the workday id. Employees
// without details are named by id and placed in department div-sec.
func Merge(hours []hrbackend.EmployeeHours, details []hrbackend.EmployeeActive) []Employee {
	byID := make(map[string]hrbackend.EmployeeActive, len(details))
	for _, d := range details {
		byID[d.WorkdayID] = d
	}

	list := make([]Employee, 0, len(hours))
	for _, h := range hours {
		d := byID[h.EmpID]

		e := Employee{
			ID:               h.EmpID,
			Name:             d.EmpName,
			Division:         h.Div,
			DepartmentName:   d.DeptName,
			DeptCode:         d.DeptCode,
			Hours:            h.Weeks(),
			CurrentUsedHours: h.CurrentDateUseHour,
			HoursLeft:        h.HoursLeft,
		}
		if e.Name == "" {
			e.Name = h.EmpID
		}
		if e.DepartmentName == "" {
			e.DepartmentName = fmt.Sprintf("%s-%s", h.Div, h.Sec)
		}
		if e.DeptCode == "" {
			e.DeptCode = unknownDeptCode
		}

		list = append(list, e)
	}

	return list
}

// codeParts splits an eight character department code into factory and
// division. Other lengths yield empty parts.
func codeParts(code string) (factory, division string) {
	if len(code) != 8 {
		return "", ""
	}
	return code[0:2], code[2:4]
}

func (s *Service) classify(hour float64) Status {
	switch {
	case hour > s.hourLimit:
		return StatusOvertime
	case hour > 0:
		return StatusNormal
	}
	return StatusAny
}

func (s *Service) matchStatus(e Employee, status Status, week int) bool {
	if status == StatusAny {
		return true
	}
	if week > 0 {
		return s.classify(e.Hours[week-1]) == status
	}
	for _, h := range e.Hours {
		if s.classify(h) == status {
			return true
		}
	}
	return false
}

// Apply returns the employees that match every filter field in input order.
func (s *Service) Apply(list []Employee, filter Filter) []Employee {
	search := strings.ToLower(filter.Search)

	out := []Employee{}
	for _, e := range list {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.ID), search) {
			continue
		}
		if !s.matchStatus(e, filter.Status, filter.Week) {
			continue
		}

		factory, division := codeParts(e.DeptCode)
		if filter.Factory != "" && factory != filter.Factory {
			continue
		}
		if filter.Division != "" && (factory != filter.Factory || division != filter.Division) {
			continue
		}
		if filter.Department != "" && e.DeptCode != filter.Department {
			continue
		}

		out = append(out, e)
	}

	return out
}

// Summarize counts employees for a week. With week 0 an employee is overtime
// when any week is over the limit and normal otherwise.
func (s *Service) Summarize(list []Employee, week int) Summary {
	sum := Summary{Total: len(list)}

	for _, e := range list {
		if week > 0 {
			switch s.classify(e.Hours[week-1]) {
			case StatusOvertime:
				sum.Overtime++
			case StatusNormal:
				sum.Normal++
			}
			continue
		}

		for _, h := range e.Hours {
			if h > s.hourLimit {
				sum.Overtime++
				break
			}
		}
	}

	if week == 0 {
		sum.Normal = sum.Total - sum.Overtime
	}

	return sum
}

// BuildOptions lists the filter choices. Factories come from every employee,
// divisions from the selected factory and departments from the selected
// division, unique by name.
func BuildOptions(list []Employee, factory, division string) Options {
	opts := Options{Factories: []Option{}, Divisions: []Option{}, Departments: []Option{}}

	seenFactory := map[string]bool{}
	seenDivision := map[string]bool{}
	departments := map[string]Option{}

	for _, e := range list {
		f, d := codeParts(e.DeptCode)
		if f != "" && !seenFactory[f] {
			seenFactory[f] = true
			opts.Factories = append(opts.Factories, Option{Code: f, Name: e.DepartmentName})
		}
		if f == factory && d != "" && d != "00" && !seenDivision[d] {
			seenDivision[d] = true
			opts.Divisions = append(opts.Divisions, Option{Code: d, Name: e.DepartmentName})
		}
		if factory != "" && f == factory && d == division && e.DepartmentName != "" {
			departments[e.DepartmentName] = Option{Code: e.DeptCode, Name: e.DepartmentName}
		}
	}

	for _, o := range departments {
		opts.Departments = append(opts.Departments, o)
	}
	sort.Slice(opts.Departments, func(i, j int) bool {
		return opts.Departments[i].Name < opts.Departments[j].Name
	})

	return opts
}

// LatestUsed returns the hours of the last week with any hours, or 0.
func LatestUsed(hours [Weeks]float64) float64 {
	for i := len(hours) - 1; i >= 0; i-- {
		if hours[i] > 0 {
			return hours[i]
		}
	}
	return 0
}

// Table lays out employees for export. With week 0 all weeks are listed and
// the used and left columns refer to the latest worked week.
func (s *Service) Table(list []Employee, week int) export.Table {
	headers := []string{"ID", "Name", "Department"}
	widths := []float64{12, 30, 30}
	if week == 0 {
		for i := 1; i <= Weeks; i++ {
			headers = append(headers, fmt.Sprintf("Week%d", i))
			widths = append(widths, 9)
		}
		headers = append(headers, "Used (latest week)", "Left (latest week)")
	} else {
		headers = append(headers, fmt.Sprintf("Week %d", week), "Used", "Left")
		widths = append(widths, 9)
	}
	widths = append(widths, 18, 18)

	table := export.Table{
		Sheet:   "Work hours",
		Title:   "Weekly work hours",
		Headers: headers,
		Widths:  widths,
		Rows:    make([]export.Row, 0, len(list)),
	}

	for _, e := range list {
		cells := []interface{}{e.ID, e.Name, e.DepartmentName}
		if week == 0 {
			for _, h := range e.Hours {
				cells = append(cells, h)
			}
			used := LatestUsed(e.Hours)
			cells = append(cells, used, s.hourLimit-used)
		} else {
			used := e.Hours[week-1]
			cells = append(cells, used, used, s.hourLimit-used)
		}

		table.Rows = append(table.Rows, export.Row{
			Cells:    cells,
			Emphasis: s.matchStatus(e, StatusOvertime, week),
		})
	}

	return table
}

// paginate clamps page and limit. A zero limit returns everything on one page.
func paginate(total, page, limit int) (int, int, int) {
	if limit == 0 {
		limit = total
		if limit == 0 {
			limit = DefaultLimit
		}
	}

	pages := (total + limit - 1) / limit
	if page < 1 {
		page = 1
	}

	return page, limit, pages
}
