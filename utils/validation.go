// utils/validation.go
package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key for errors not tied to a single field.
const NonFieldErrors = "non_field_errors"

// FieldErrors maps a JSON field path such as "customer_histories[1].history"
// to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

var registerOnce sync.Once

// RegisterJSONFieldNames makes validation errors report JSON names instead
// of Go field names. Safe to call more than once.
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindJSON binds the request body into obj. It returns nil on success and
// the field errors to report otherwise.
func BindJSON(c *gin.Context, obj interface{}) FieldErrors {
	err := c.ShouldBindBodyWith(obj, binding.JSON)
	if err == nil {
		return nil
	}
	body, _ := c.Get(gin.BodyBytesKey)
	raw, _ := body.([]byte)
	return BindingErrors(err, raw)
}

// BindingErrors converts an error from gin's JSON binding into field errors.
// body is the request payload, used to locate type errors inside lists; it
// may be nil.
func BindingErrors(err error, body []byte) FieldErrors {
	out := FieldErrors{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			out.Add(fieldPath(fe.Namespace()), validationMessage(fe))
		}
	case errors.As(err, &typeErr):
		field, ok := valuePath(body, typeErr.Offset)
		if !ok {
			field = typeErr.Field
		}
		if field == "" {
			field = NonFieldErrors
		}
		out.Add(field, typeMessage(typeErr.Type.Kind()))
	case errors.As(err, &syntaxErr):
		out.Add(NonFieldErrors, "JSON parse error - "+syntaxErr.Error())
	case errors.Is(err, io.ErrUnexpectedEOF):
		out.Add(NonFieldErrors, "JSON parse error - unexpected end of input")
	case errors.Is(err, io.EOF):
		out.Add(NonFieldErrors, "No data provided.")
	default:
		out.Add(NonFieldErrors, err.Error())
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return "This field may not be blank."
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %s rule.", strconv.Quote(fe.Tag()))
	}
}

func typeMessage(kind reflect.Kind) string {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.Slice, reflect.Array:
		return "Expected a list of items."
	case reflect.Struct, reflect.Map:
		return "Invalid data. Expected a dictionary."
	default:
		return "Invalid value."
	}
}

type pathFrame struct {
	array   bool
	index   int
	key     string
	wantKey bool
}

// valuePath replays body up to offset and returns the path of the value
// ending there, e.g. "customer_histories[1].id".
func valuePath(body []byte, offset int64) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var stack []*pathFrame
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}

		var top *pathFrame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		if key, ok := tok.(string); ok && top != nil && !top.array && top.wantKey {
			top.key = key
			top.wantKey = false
			continue
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			advance(stack)
			continue
		}

		if dec.InputOffset() >= offset {
			path := joinPath(stack)
			return path, path != ""
		}

		switch tok {
		case json.Delim('{'):
			stack = append(stack, &pathFrame{wantKey: true})
		case json.Delim('['):
			stack = append(stack, &pathFrame{array: true})
		default:
			advance(stack)
		}
	}
}

// advance moves the innermost container past a completed value.
func advance(stack []*pathFrame) {
	if len(stack) == 0 {
		return
	}
	top := stack[len(stack)-1]
	if top.array {
		top.index++
	} else {
		top.wantKey = true
	}
}

func joinPath(stack []*pathFrame) string {
	var b strings.Builder
	for _, f := range stack {
		if f.array {
			fmt.Fprintf(&b, "[%d]", f.index)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.key)
	}
	return b.String()
}
