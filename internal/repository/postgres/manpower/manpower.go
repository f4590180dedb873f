package manpower

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/pkg/repository/postgresql"
	"manpower/backend/internal/rollup"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

var factoryCode = regexp.MustCompile(`^\d{2}`)

type Repository struct {
	*postgresql.Database
	lateAfter time.Duration
}

// NewRepository returns a repository over the manpower views. lateAfter is
// the clock time after which a first scan counts as over-in.
func NewRepository(database *postgresql.Database, lateAfter time.Duration) *Repository {
	return &Repository{Database: database, lateAfter: lateAfter}
}

func (r Repository) GetList(ctx context.Context, filter ListFilter) ([]rollup.RawRecord, error) {
	var (
		where []string
		args  []interface{}
	)

	switch {
	case filter.From != nil && filter.To != nil:
		where = append(where, "workdate >= ? AND workdate <= ?")
		args = append(args, filter.From.String(), filter.To.String())
	case filter.From != nil:
		where = append(where, "workdate = ?")
		args = append(args, filter.From.String())
	case filter.To != nil:
		where = append(where, "workdate = ?")
		args = append(args, filter.To.String())
	}

	if filter.Factory != nil && factoryCode.MatchString(*filter.Factory) {
		where = append(where, "deptcodelevel1 = ?")
		args = append(args, *filter.Factory)
	}

	whereQuery := ""
	if len(where) > 0 {
		whereQuery = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(workdate::text, ''),
			COALESCE(deptcode::text, ''),
			COALESCE(deptname::text, ''),
			COALESCE(countscan::text, ''),
			COALESCE(countnotscan::text, ''),
			COALESCE(countperson::text, ''),
			COALESCE(deptsbu::text, ''),
			COALESCE(deptstd::text, '')
		FROM public.vw_manpower
		%s
		ORDER BY workdate, deptcode
	`, whereQuery)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting manpower"), http.StatusInternalServerError)
	}
	defer rows.Close()

	list := []rollup.RawRecord{}
	for rows.Next() {
		var detail rollup.RawRecord
		if err = rows.Scan(
			&detail.WorkDate,
			&detail.DeptCode,
			&detail.DeptName,
			&detail.CountScan,
			&detail.CountNotScan,
			&detail.CountPerson,
			&detail.DeptSBU,
			&detail.DeptSTD); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning manpower"), http.StatusInternalServerError)
		}

		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading manpower"), http.StatusInternalServerError)
	}

	return list, nil
}

func (r Repository) GetSummary(ctx context.Context, workDate date.Date, deptCode *string) (Summary, error) {
	query := `
		SELECT
			COALESCE(SUM(countscan), 0)::bigint,
			COALESCE(SUM(countnotscan), 0)::bigint
		FROM public.vw_manpower
		WHERE workdate = ?`
	args := []interface{}{workDate.String()}

	if deptCode != nil && factoryCode.MatchString(*deptCode) {
		query += " AND deptcodelevel1 = ?"
		args = append(args, *deptCode)
	}

	var summary Summary
	err := r.QueryRowContext(ctx, query, args...).Scan(&summary.TotalScanned, &summary.TotalNotScanned)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, web.NewRequestError(errors.Wrap(err, "selecting attendance summary"), http.StatusInternalServerError)
	}

	return summary, nil
}

func (r Repository) GetBarChart(ctx context.Context, workDate date.Date, deptCode *string) ([]BarChartItem, error) {
	query := `
		SELECT
			deptcode::text,
			COALESCE(deptname::text, ''),
			COALESCE(SUM(countscan), 0)::bigint,
			COALESCE(SUM(countnotscan), 0)::bigint
		FROM public.vw_manpower
		WHERE workdate = ?`
	args := []interface{}{workDate.String()}

	if deptCode != nil && *deptCode != "" {
		query += " AND deptcodelevel1 = ?"
		args = append(args, *deptCode)
	}

	query += `
		GROUP BY deptcode, deptname
		ORDER BY deptname`

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting department chart"), http.StatusInternalServerError)
	}
	defer rows.Close()

	list := []BarChartItem{}
	for rows.Next() {
		var item BarChartItem
		if err = rows.Scan(
			&item.DeptCode,
			&item.Department,
			&item.ScannedCount,
			&item.NotScannedCount); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning department chart"), http.StatusInternalServerError)
		}

		list = append(list, item)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading department chart"), http.StatusInternalServerError)
	}

	return list, nil
}

const detailColumns = `
			COALESCE(workdate::text, ''),
			COALESCE(person_code::text, ''),
			COALESCE(htcpersoncode::text, ''),
			COALESCE(deptcode::text, ''),
			COALESCE(deptname::text, ''),
			COALESCE(full_name::text, ''),
			COALESCE(department_full_paths::text, ''),
			firstscantime::text,
			lastscantime::text,
			COALESCE(shiftname::text, ''),
			COALESCE("PersonType"::text, '')`

func (r Repository) GetDetail(ctx context.Context, filter DetailFilter) (DetailResponse, error) {
	if len(filter.DeptCodes) == 0 || len(filter.WorkDates) == 0 {
		return DetailResponse{}, web.NewRequestError(errors.New("deptcodes and workdate are required"), http.StatusBadRequest)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM public.vw_manpower_detail
		WHERE deptcode IN (?)
			AND workdate IN (?)
		ORDER BY workdate, full_name
	`, detailColumns)

	details, err := r.selectDetails(ctx, "report detail", query, bun.In(filter.DeptCodes), bun.In(filter.WorkDates))
	if err != nil {
		return DetailResponse{}, err
	}

	return BuildDetailResponse(details), nil
}

func (r Repository) GetPersonHistory(ctx context.Context, filter PersonFilter) ([]Detail, error) {
	if strings.TrimSpace(filter.PersonCode) == "" {
		return nil, web.NewRequestError(errors.New("person_code is required"), http.StatusBadRequest)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM public.vw_manpower_detail
		WHERE person_code = ?
			AND workdate BETWEEN ? AND ?
		ORDER BY workdate ASC, full_name
	`, detailColumns)

	return r.selectDetails(ctx, "person history", query, filter.PersonCode, filter.From.String(), filter.To.String())
}

// GetScanDetail lists the people of a date, today when filter.Date is nil.
// A department code of "all" disables the department filter.
func (r Repository) GetScanDetail(ctx context.Context, filter ScanFilter) ([]Detail, error) {
	workDate := date.Date{Time: time.Now()}
	if filter.Date != nil {
		workDate = *filter.Date
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM public.vw_manpower_detail
		WHERE workdate = ?
			AND person_code IS NOT NULL
			AND person_code != ''`, detailColumns)
	args := []interface{}{workDate.String()}

	if filter.DeptCode != nil && *filter.DeptCode != "" && *filter.DeptCode != "all" {
		query += " AND deptcode = ?"
		args = append(args, *filter.DeptCode)
	}

	query += " ORDER BY deptcode, full_name"

	return r.selectDetails(ctx, "scan detail", query, args...)
}

func (r Repository) GetDepartments(ctx context.Context) ([]Department, error) {
	query := `
		SELECT
			COALESCE(deptcode::text, ''),
			COALESCE(deptname::text, ''),
			COALESCE(full_name::text, ''),
			COALESCE(person_code::text, ''),
			COALESCE(wecom_user_id::text, ''),
			COALESCE("PersonGroup"::text, '')
		FROM public.vw_manpower_detail`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting department list"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []DepartmentRow
	for rows.Next() {
		var row DepartmentRow
		if err = rows.Scan(
			&row.DeptCode,
			&row.DeptName,
			&row.FullName,
			&row.PersonCode,
			&row.WeComUserID,
			&row.PersonGroup); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning department list"), http.StatusInternalServerError)
		}

		list = append(list, row)
	}
	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "reading department list"), http.StatusInternalServerError)
	}

	departments := GroupDepartments(list)
	if departments == nil {
		departments = []Department{}
	}

	return departments, nil
}

func (r Repository) selectDetails(ctx context.Context, what, query string, args ...interface{}) ([]Detail, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrapf(err, "selecting %s", what), http.StatusInternalServerError)
	}
	defer rows.Close()

	list := []Detail{}
	for rows.Next() {
		var detail Detail
		if err = rows.Scan(
			&detail.WorkDate,
			&detail.PersonCode,
			&detail.HTCPersonCode,
			&detail.DeptCode,
			&detail.DeptName,
			&detail.FullName,
			&detail.DepartmentFullPaths,
			&detail.FirstScanTime,
			&detail.LastScanTime,
			&detail.ShiftName,
			&detail.PersonType); err != nil {
			return nil, web.NewRequestError(errors.Wrapf(err, "scanning %s", what), http.StatusInternalServerError)
		}

		detail.OverIn = OverIn(detail.FirstScanTime, r.lateAfter)
		list = append(list, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, web.NewRequestError(errors.Wrapf(err, "reading %s", what), http.StatusInternalServerError)
	}

	return list, nil
}
