package wecom

import (
	"net/http"
	"reflect"

	"manpower/backend/foundation/web"
	"manpower/backend/internal/repository/hrbackend"
)

type Controller struct {
	lineUsers LineUsers
}

func NewController(lineUsers LineUsers) *Controller {
	return &Controller{lineUsers}
}

func (uc Controller) GetLineUsers(c *web.Context) error {
	list, err := uc.lineUsers.ListLineUsers(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetLineUser(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)
	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.lineUsers.GetLineUser(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) CreateLineUser(c *web.Context) error {
	var request hrbackend.LineUserRequest
	if err := c.BindFunc(&request, "EmployeeCode", "WeComID"); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.lineUsers.CreateLineUser(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (uc Controller) UpdateLineUser(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)
	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request hrbackend.LineUserRequest
	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.lineUsers.UpdateLineUser(c.Ctx, id, request)
	if err != nil {
		return c.RespondError(err)
	}
	if response == nil {
		return c.Respond(nil, http.StatusNoContent)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) DeleteLineUser(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)
	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := uc.lineUsers.DeleteLineUser(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"message": "Deleted successfully",
		"status":  true,
	}, http.StatusOK)
}

func (uc Controller) GetEmployeeActive(c *web.Context) error {
	list, err := uc.lineUsers.GetEmployeeActive(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}
