package attendance

import (
	"net/http"
	"reflect"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/postgres/manpower"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	attendance Attendance
}

func NewController(attendance Attendance) *Controller {
	return &Controller{attendance}
}

func (uc Controller) GetSummary(c *web.Context) error {
	workDate, ok := c.GetQueryFunc(web.DateKind, "date").(*date.Date)
	deptCode, _ := c.GetQueryFunc(reflect.String, "deptCode").(*string)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if !ok {
		return c.RespondError(web.NewFieldsError(http.StatusBadRequest, web.FieldError{Field: "date", Error: "is required"}))
	}

	response, err := uc.attendance.GetSummary(c.Ctx, *workDate, deptCode)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// GetReportDetail lists the people of the given departments. Dates come
// either from workdate (comma separated) or from the start_date..end_date range.
func (uc Controller) GetReportDetail(c *web.Context) error {
	var filter manpower.DetailFilter

	if codes, ok := c.GetQueryFunc(reflect.Slice, "deptcodes").([]string); ok {
		filter.DeptCodes = codes
	}
	if dates, ok := c.GetQueryFunc(reflect.Slice, "workdate").([]string); ok {
		for _, d := range dates {
			if _, err := date.ParseDate(d); err != nil {
				return c.RespondError(web.NewFieldsError(http.StatusBadRequest, web.FieldError{Field: "workdate", Error: "must be a date in yyyy-mm-dd format"}))
			}
		}
		filter.WorkDates = dates
	}
	start, hasStart := c.GetQueryFunc(web.DateKind, "start_date").(*date.Date)
	end, hasEnd := c.GetQueryFunc(web.DateKind, "end_date").(*date.Date)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	if len(filter.WorkDates) == 0 && hasStart {
		if !hasEnd {
			end = start
		}
		dates, err := manpower.ExpandDates(*start, *end)
		if err != nil {
			return c.RespondError(err)
		}
		filter.WorkDates = dates
	}

	response, err := uc.attendance.GetDetail(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetPersonHistory(c *web.Context) error {
	var filter manpower.PersonFilter

	personCode, hasCode := c.GetQueryFunc(reflect.String, "person_code").(*string)
	from, hasFrom := c.GetQueryFunc(web.DateKind, "from").(*date.Date)
	to, hasTo := c.GetQueryFunc(web.DateKind, "to").(*date.Date)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if !hasCode || !hasFrom || !hasTo {
		return c.RespondError(web.NewRequestError(errors.New("person_code, from and to are required"), http.StatusBadRequest))
	}

	filter.PersonCode = *personCode
	filter.From = *from
	filter.To = *to

	list, err := uc.attendance.GetPersonHistory(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"records": list,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetScanNoScan(c *web.Context) error {
	var filter manpower.ScanFilter

	if workDate, ok := c.GetQueryFunc(web.DateKind, "date").(*date.Date); ok {
		filter.Date = workDate
	}
	if deptCode, ok := c.GetQueryFunc(reflect.String, "deptcode").(*string); ok {
		filter.DeptCode = deptCode
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.attendance.GetScanDetail(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"detail": list,
			"count":  len(list),
		},
		"status": true,
	}, http.StatusOK)
}
