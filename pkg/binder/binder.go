// Package binder decodes request payloads into handler parameter structs,
// normalizes them with mod tags, fills defaults and validates them.
package binder

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

var unknownFieldRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// formFilesField is the struct field that receives uploaded files, keyed by
// form field name.
const formFilesField = "FormFiles"

// Binder implements echo.Binder.
type Binder struct {
	query    *schema.Decoder
	form     *schema.Decoder
	conform  *mold.Transformer
	validate *validator.Validate
}

func New() (*Binder, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	for tag, fn := range map[string]validator.Func{
		"date":  dateValidator,
		"url":   urlValidator,
		"genre": genreValidator,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return &Binder{
		query:    newDecoder("query"),
		form:     newDecoder("form"),
		conform:  modifiers.New(),
		validate: validate,
	}, nil
}

func newDecoder(tag string) *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag(tag)
	return d
}

// jsonFieldName reports validation errors under the JSON name of a field,
// or its path or query name when it has no JSON name.
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "param", "query"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return ""
}

// Bind decodes the body (or the query string for GET and DELETE without a
// body) and the path params into i, then applies mod tags, defaults and
// validation. Writes without a body are rejected.
func (b *Binder) Bind(i interface{}, c echo.Context) error {
	req := c.Request()

	if req.ContentLength <= 0 {
		if req.Method != http.MethodGet && req.Method != http.MethodDelete {
			return errcodes.EmptyRequestBody()
		}
		if err := decodeValues(b.query, i, c.QueryParams()); err != nil {
			return err
		}
		return b.finish(i, c)
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	var err error
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		err = b.bindJSON(i, c)
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm), strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		err = b.bindForm(i, c)
	default:
		err = errcodes.UnsupportedMediaType()
	}
	if err != nil {
		return err
	}
	return b.finish(i, c)
}

func (b *Binder) bindJSON(i interface{}, c echo.Context) error {
	body := c.Request().Body
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	err := dec.Decode(i)
	if err == nil {
		return nil
	}

	if m := unknownFieldRE.FindStringSubmatch(err.Error()); len(m) > 1 {
		return errcodes.UnknownParameter(m[1])
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
	}
	logger.FromEchoContext(c).Err(err).Warn("malformed json payload")
	return errcodes.MalformedPayload()
}

func (b *Binder) bindForm(i interface{}, c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return errcodes.MalformedPayload()
	}
	if err := decodeValues(b.form, i, values); err != nil {
		return err
	}

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return errcodes.MalformedPayload()
	}
	setFormFiles(i, form)
	return nil
}

// setFormFiles stores the first file of every form field in i's FormFiles
// map, when i has one.
func setFormFiles(i interface{}, form *multipart.Form) {
	field := reflect.ValueOf(i).Elem().FieldByName(formFilesField)
	if !field.IsValid() || !field.CanSet() || len(form.File) == 0 {
		return
	}
	files := reflect.MakeMap(field.Type())
	for name, headers := range form.File {
		if len(headers) > 0 {
			files.SetMapIndex(reflect.ValueOf(name), reflect.ValueOf(headers[0]))
		}
	}
	field.Set(files)
}

// setPathParams copies route params into the string fields tagged
// `param:"name"`.
func setPathParams(i interface{}, c echo.Context) {
	v := reflect.ValueOf(i).Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for n := 0; n < t.NumField(); n++ {
		name := t.Field(n).Tag.Get("param")
		if name == "" {
			continue
		}
		if f := v.Field(n); f.Kind() == reflect.String && f.CanSet() {
			f.SetString(c.Param(name))
		}
	}
}

func (b *Binder) finish(i interface{}, c echo.Context) error {
	setPathParams(i, c)
	if err := b.conform.Struct(c.Request().Context(), i); err != nil {
		return errors.WithStack(err)
	}
	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	err := b.validate.Struct(i)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errcodes.ValidationError(formatValidationError(verrs[0]))
	}
	return errors.WithStack(err)
}

func decodeValues(d *schema.Decoder, i interface{}, values url.Values) error {
	err := d.Decode(i, values)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return errors.WithStack(err)
	}
	for _, e := range multi {
		switch e := e.(type) {
		case schema.ConversionError:
			return errcodes.ValidationTypeError(formatSchemaConversionError(e))
		case schema.UnknownKeyError:
			return errcodes.UnknownParameter(e.Key)
		default:
			return errors.WithStack(e)
		}
	}
	return errors.WithStack(err)
}
