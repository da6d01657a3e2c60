package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors to form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

// Validate runs struct-tag validation and translates failures into a ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un correo válido"
	case "numeric":
		return "debe contener solo dígitos"
	case "len":
		return fmt.Sprintf("debe tener %s caracteres", fe.Param())
	case "min":
		return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("debe tener como máximo %s caracteres", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", minParam(fe))
	case "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	default:
		return "no es válido"
	}
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return "1"
	}
	return fe.Param()
}

// DecodeAndValidate decodes a JSON body into dst and validates it.
// It writes the 400 response itself and returns false when the body is unusable.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return false
	}
	return RespondIfInvalid(w, dst)
}

// DecodeOptional is DecodeAndValidate for bodies that may be empty. An empty
// body, with or without a Content-Length, leaves dst at its zero value.
func DecodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		RespondError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return false
	}
	return RespondIfInvalid(w, dst)
}

// RespondIfInvalid validates v and writes a 400 with field messages on failure.
func RespondIfInvalid(w http.ResponseWriter, v any) bool {
	err := Validate(v)
	if err == nil {
		return true
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		RespondJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Datos inválidos", Fields: verr.Fields})
		return false
	}
	RespondError(w, http.StatusBadRequest, err.Error())
	return false
}
