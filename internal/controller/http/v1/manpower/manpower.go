package manpower

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/postgres/manpower"
	"manpower/backend/internal/rollup"
	"manpower/backend/internal/service/export"
	"manpower/backend/internal/service/report"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	manpower Manpower
	report   Report
}

func NewController(manpower Manpower, report Report) *Controller {
	return &Controller{manpower: manpower, report: report}
}

func listFilter(c *web.Context) manpower.ListFilter {
	var filter manpower.ListFilter

	if from, ok := c.GetQueryFunc(web.DateKind, "from").(*date.Date); ok {
		filter.From = from
	}
	if to, ok := c.GetQueryFunc(web.DateKind, "to").(*date.Date); ok {
		filter.To = to
	}
	if day, ok := c.GetQueryFunc(web.DateKind, "date").(*date.Date); ok {
		filter.From, filter.To = day, day
	}
	if factory, ok := c.GetQueryFunc(reflect.String, "factory").(*string); ok {
		filter.Factory = factory
	}

	return filter
}

func (uc Controller) GetList(c *web.Context) error {
	filter := listFilter(c)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, err := uc.manpower.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

func reportFilter(c *web.Context) (report.Filter, error) {
	filter := report.Filter{ListFilter: listFilter(c), ScanStatus: rollup.ScanStatusAll}

	if status, ok := c.GetQueryFunc(reflect.String, "scan_status").(*string); ok {
		st, err := rollup.ParseScanStatus(*status)
		if err != nil {
			return report.Filter{}, web.NewFieldsError(http.StatusBadRequest, web.FieldError{Field: "scan_status", Error: err.Error()})
		}
		filter.ScanStatus = st
	}
	if err := c.ValidQuery(); err != nil {
		return report.Filter{}, err
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(filter.From.Time) {
		return report.Filter{}, web.NewRequestError(errors.New("to must not be before from"), http.StatusBadRequest)
	}

	return filter, nil
}

func (uc Controller) GetReport(c *web.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.report.Build(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) ExportReport(c *web.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
	}

	data, err := uc.report.Export(c.Ctx, filter, format)
	if err != nil {
		return c.RespondError(err)
	}

	name := fmt.Sprintf("manpower_%s.%s", time.Now().Format("20060102_150405"), format)
	return c.RespondFile(data, format.ContentType(), name)
}
