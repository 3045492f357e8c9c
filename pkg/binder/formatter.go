package binder

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

var timeType = reflect.TypeOf(time.Time{})

// fixedMessages holds the validation messages that only need the field name.
var fixedMessages = map[string]string{
	"date":     "%q should be in the format of YYYY-MM-DD",
	"email":    "%q is not a valid email",
	"genre":    "%q is not a known genre",
	"required": "%q is required",
	"url":      "%q must be an http or https URL",
	"uuid4":    "%q must be a valid id",
}

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	if msg, ok := fixedMessages[err.Tag()]; ok {
		return fmt.Sprintf(msg, field)
	}

	switch err.Tag() {
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", field, comparisonParam(err))
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, comparisonParam(err))
	case "max":
		return boundMessage(err, "less than or equal to")
	case "min":
		return boundMessage(err, "greater than or equal to")
	case "ne":
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case "oneof":
		options := strings.Fields(err.Param())
		for i, o := range options {
			options[i] = fmt.Sprintf("%q", o)
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(options, ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// comparisonParam is the right-hand side of a gt/gte check. Time fields
// compared without a parameter are compared against the current time.
func comparisonParam(err validator.FieldError) string {
	if err.Param() == "" && err.Type() == timeType {
		return "now"
	}
	return err.Param()
}

// boundMessage describes a failed min or max check. Numbers are compared by
// value, slices by element count and everything else by character count.
func boundMessage(err validator.FieldError, relation string) string {
	if isNumeric(err.Kind()) {
		return fmt.Sprintf("%q must be %s %s", err.Field(), relation, err.Param())
	}
	unit := "character"
	if err.Kind() == reflect.Slice {
		unit = "element"
	}
	if err.Param() != "1" {
		unit += "s"
	}
	return fmt.Sprintf("%q length must be %s %s %s", err.Field(), relation, err.Param(), unit)
}

func isNumeric(k reflect.Kind) bool {
	switch k { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
