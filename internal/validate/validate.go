package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json name, not the Go identifier
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Detail describes a single offending field.
type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates a payload struct and returns one detail per failing
// field, or nil when the payload is valid.
func Struct(payload any) []Detail {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Detail{{Field: "unknown", Message: err.Error()}}
	}
	details := make([]Detail, 0, len(errs))
	for _, e := range errs {
		details = append(details, Detail{Field: e.Field(), Message: message(e)})
	}
	return details
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
