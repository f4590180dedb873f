package department

import (
	"net/http"
	"reflect"

	"manpower/backend/foundation/web"

	"github.com/Azure/go-autorest/autorest/date"
)

type Controller struct {
	department Department
}

func NewController(department Department) *Controller {
	return &Controller{department}
}

func (uc Controller) GetBarChart(c *web.Context) error {
	workDate, ok := c.GetQueryFunc(web.DateKind, "date").(*date.Date)
	deptCode, _ := c.GetQueryFunc(reflect.String, "deptCode").(*string)
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if !ok {
		return c.RespondError(web.NewFieldsError(http.StatusBadRequest, web.FieldError{Field: "date", Error: "is required"}))
	}

	list, err := uc.department.GetBarChart(c.Ctx, *workDate, deptCode)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetList(c *web.Context) error {
	list, err := uc.department.GetDepartments(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"departments": list,
		},
		"status": true,
	}, http.StatusOK)
}
