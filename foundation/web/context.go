package web

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DateKind is accepted by GetQueryFunc to parse a yyyy-mm-dd query value into *date.Date.
const DateKind = reflect.Kind(1000)

type Context struct {
	*gin.Context
	Ctx context.Context

	log         *zap.Logger
	queryErrors []FieldError
	paramErrors []FieldError
}

// NewContext is used by tests and middleware that build a Context outside of App.Handle.
func NewContext(gc *gin.Context, log *zap.Logger) *Context {
	return &Context{Context: gc, Ctx: gc.Request.Context(), log: log}
}

func (c *Context) Log() *zap.Logger {
	return c.log
}

// GetQueryFunc parses the query value under key according to kind. It returns
// nil when the key is absent or empty, and a pointer (or a []string for
// reflect.Slice) otherwise. Parse failures are collected and reported by ValidQuery.
func (c *Context) GetQueryFunc(kind reflect.Kind, key string) interface{} {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be an integer"})
			return nil
		}
		return &v
	case reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be a number"})
			return nil
		}
		return &v
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be a boolean"})
			return nil
		}
		return &v
	case reflect.String:
		return &value
	case reflect.Slice:
		var list []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		if len(list) == 0 {
			return nil
		}
		return list
	case DateKind:
		v, err := date.ParseDate(value)
		if err != nil {
			c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: "must be a date in yyyy-mm-dd format"})
			return nil
		}
		return &v
	}

	c.queryErrors = append(c.queryErrors, FieldError{Field: key, Error: fmt.Sprintf("unsupported kind %s", kind)})
	return nil
}

func (c *Context) ValidQuery() error {
	if len(c.queryErrors) == 0 {
		return nil
	}
	return NewFieldsError(http.StatusBadRequest, c.queryErrors...)
}

// GetParam returns the path parameter under key converted to kind. On failure
// the zero value is returned and ValidParam reports the error.
func (c *Context) GetParam(kind reflect.Kind, key string) interface{} {
	value := strings.TrimSpace(c.Param(key))

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			c.paramErrors = append(c.paramErrors, FieldError{Field: key, Error: "must be an integer"})
			return 0
		}
		return v
	case reflect.String:
		if value == "" {
			c.paramErrors = append(c.paramErrors, FieldError{Field: key, Error: "is required"})
		}
		return value
	}

	c.paramErrors = append(c.paramErrors, FieldError{Field: key, Error: fmt.Sprintf("unsupported kind %s", kind)})
	return nil
}

func (c *Context) ValidParam() error {
	if len(c.paramErrors) == 0 {
		return nil
	}
	return NewFieldsError(http.StatusBadRequest, c.paramErrors...)
}

// BindFunc decodes the request body into request and checks that the listed
// fields are set.
func (c *Context) BindFunc(request interface{}, requiredFields ...string) error {
	if err := c.ShouldBind(request); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	return ValidateStruct(request, requiredFields...)
}

func (c *Context) Respond(data interface{}, status int) error {
	if status == http.StatusNoContent {
		c.Status(status)
		return nil
	}

	c.JSON(status, data)
	return nil
}

// RespondError writes err as a JSON error body. Request errors keep their
// status; anything else becomes a 500 and is logged.
func (c *Context) RespondError(err error) error {
	if re, ok := AsRequestError(err); ok {
		if re.Status >= http.StatusInternalServerError && c.log != nil {
			c.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}

		body := gin.H{
			"error":  re.Error(),
			"status": false,
		}
		if len(re.Fields) > 0 {
			body["fields"] = re.Fields
		}

		c.AbortWithStatusJSON(re.Status, body)
		return nil
	}

	if c.log != nil {
		c.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":  http.StatusText(http.StatusInternalServerError),
		"status": false,
	})
	return nil
}

// RespondFile writes data as an attachment named fileName.
func (c *Context) RespondFile(data []byte, contentType, fileName string) error {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, contentType, data)
	return nil
}
