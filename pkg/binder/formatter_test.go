package binder

import (
	"reflect"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
)

// stubFieldError satisfies validator.FieldError for a single field named
// "shelf_name".
type stubFieldError struct {
	tag   string
	param string
	kind  reflect.Kind
	typ   reflect.Type
}

func (e stubFieldError) Error() string                    { return "stub field error" }
func (e stubFieldError) Tag() string                      { return e.tag }
func (e stubFieldError) ActualTag() string                { return e.tag }
func (e stubFieldError) Namespace() string                { return "" }
func (e stubFieldError) StructNamespace() string          { return "" }
func (e stubFieldError) Field() string                    { return "shelf_name" }
func (e stubFieldError) StructField() string              { return "" }
func (e stubFieldError) Value() interface{}               { return nil }
func (e stubFieldError) Param() string                    { return e.param }
func (e stubFieldError) Translate(_ ut.Translator) string { return "" }

func (e stubFieldError) Kind() reflect.Kind {
	if e.kind == reflect.Invalid {
		return reflect.String
	}
	return e.kind
}

func (e stubFieldError) Type() reflect.Type {
	if e.typ == nil {
		return reflect.TypeOf("")
	}
	return e.typ
}

func TestFormatValidationError(t *testing.T) {
	t.Run("fixed messages", func(t *testing.T) {
		expected := map[string]string{
			"date":     `"shelf_name" should be in the format of YYYY-MM-DD`,
			"email":    `"shelf_name" is not a valid email`,
			"genre":    `"shelf_name" is not a known genre`,
			"required": `"shelf_name" is required`,
			"url":      `"shelf_name" must be an http or https URL`,
			"uuid4":    `"shelf_name" must be a valid id`,
			"unknown":  `"shelf_name" is invalid`,
		}
		for tag, msg := range expected {
			assert.Equal(t, msg, formatValidationError(stubFieldError{tag: tag}), tag)
		}
	})

	t.Run("comparisons", func(t *testing.T) {
		assert.Equal(t, `"shelf_name" must be greater than 0`,
			formatValidationError(stubFieldError{tag: "gt", param: "0"}))
		assert.Equal(t, `"shelf_name" must be greater than or equal to 1`,
			formatValidationError(stubFieldError{tag: "gte", param: "1"}))
		assert.Equal(t, `"shelf_name" must be greater than now`,
			formatValidationError(stubFieldError{tag: "gt", typ: reflect.TypeOf(time.Time{})}))
		assert.Equal(t, `"shelf_name" can't be "Read"`,
			formatValidationError(stubFieldError{tag: "ne", param: "Read"}))
	})

	t.Run("bounds by kind", func(t *testing.T) {
		cases := []struct {
			tag   string
			param string
			kind  reflect.Kind
			msg   string
		}{
			{"max", "100", reflect.String, `"shelf_name" length must be less than or equal to 100 characters`},
			{"max", "1", reflect.String, `"shelf_name" length must be less than or equal to 1 character`},
			{"min", "1", reflect.String, `"shelf_name" length must be greater than or equal to 1 character`},
			{"max", "5", reflect.Int, `"shelf_name" must be less than or equal to 5`},
			{"min", "1", reflect.Int64, `"shelf_name" must be greater than or equal to 1`},
			{"min", "0", reflect.Float64, `"shelf_name" must be greater than or equal to 0`},
			{"max", "1", reflect.Uint, `"shelf_name" must be less than or equal to 1`},
			{"max", "5", reflect.Slice, `"shelf_name" length must be less than or equal to 5 elements`},
			{"min", "1", reflect.Slice, `"shelf_name" length must be greater than or equal to 1 element`},
		}
		for _, tc := range cases {
			err := stubFieldError{tag: tc.tag, param: tc.param, kind: tc.kind}
			assert.Equal(t, tc.msg, formatValidationError(err))
		}
	})

	t.Run("oneof lists quoted options", func(t *testing.T) {
		err := stubFieldError{tag: "oneof", param: "seller library"}
		assert.Equal(t, `"shelf_name" must be one of the following: "seller", "library"`, formatValidationError(err))
	})
}
