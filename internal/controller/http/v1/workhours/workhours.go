package workhours

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/service/export"
	"manpower/backend/internal/service/workhours"
)

type Controller struct {
	workHours WorkHours
}

func NewController(workHours WorkHours) *Controller {
	return &Controller{workHours}
}

func parseFilter(c *web.Context) (workhours.Filter, error) {
	filter := workhours.Filter{Page: 1, Limit: workhours.DefaultLimit}

	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = *search
	}
	if week, ok := c.GetQueryFunc(reflect.Int, "week").(*int); ok {
		filter.Week = *week
	}
	if factory, ok := c.GetQueryFunc(reflect.String, "factory").(*string); ok {
		filter.Factory = *factory
	}
	if division, ok := c.GetQueryFunc(reflect.String, "division").(*string); ok {
		filter.Division = *division
	}
	if department, ok := c.GetQueryFunc(reflect.String, "department").(*string); ok {
		filter.Department = *department
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = *page
	}
	if c.Query("limit") == "all" {
		filter.Limit = 0
	} else if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = *limit
	}
	if err := c.ValidQuery(); err != nil {
		return workhours.Filter{}, err
	}

	status, err := workhours.ParseStatus(c.Query("status"))
	if err != nil {
		return workhours.Filter{}, err
	}
	filter.Status = status

	return filter, nil
}

func (uc Controller) GetList(c *web.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	result, err := uc.workHours.List(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   result,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) Export(c *web.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return c.RespondError(err)
	}

	data, err := uc.workHours.Export(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	name := fmt.Sprintf("work_hours_%s.xlsx", time.Now().Format("20060102"))
	return c.RespondFile(data, export.ContentTypeXLSX, name)
}
