package web

import (
	"net/http"
	"reflect"
	"strings"
)

// ValidateStruct checks that every named field of the struct pointed to by s
// holds a non-zero value. Nil pointers and blank strings count as missing.
func ValidateStruct(s interface{}, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	v := reflect.ValueOf(s)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return NewFieldsError(http.StatusBadRequest, FieldError{Field: "body", Error: "is required"})
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return NewFieldsError(http.StatusInternalServerError, FieldError{Field: "body", Error: "is not a struct"})
	}

	var missing []FieldError
	for _, name := range fields {
		f := v.FieldByName(name)
		if !f.IsValid() {
			missing = append(missing, FieldError{Field: fieldLabel(v.Type(), name), Error: "unknown field"})
			continue
		}

		if isBlank(f) {
			missing = append(missing, FieldError{Field: fieldLabel(v.Type(), name), Error: "is required"})
		}
	}

	if len(missing) > 0 {
		return NewFieldsError(http.StatusBadRequest, missing...)
	}
	return nil
}

func isBlank(f reflect.Value) bool {
	for f.Kind() == reflect.Ptr || f.Kind() == reflect.Interface {
		if f.IsNil() {
			return true
		}
		f = f.Elem()
	}

	if f.Kind() == reflect.String {
		return strings.TrimSpace(f.String()) == ""
	}
	return f.IsZero()
}

// fieldLabel prefers the json name of the field.
func fieldLabel(t reflect.Type, name string) string {
	sf, ok := t.FieldByName(name)
	if !ok {
		return name
	}

	tag := strings.Split(sf.Tag.Get("json"), ",")[0]
	if tag == "" || tag == "-" {
		return name
	}
	return tag
}
