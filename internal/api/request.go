package api

import (
	"encoding/json" // JSON decoding
	"fmt"           // Message formatting
	"reflect"       // Field iteration
	"strings"       // Tag parsing

	"travel_risk/internal/apperr" // Error taxonomy

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Struct validation
)

// validate checks request structs; errors are keyed by json field name
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// body is a decoded JSON object remembering which keys the client sent
type body map[string]json.RawMessage

// has reports whether key was present in the request
func (b body) has(key string) bool {
	_, ok := b[key]
	return ok
}

// isNull reports whether key was sent as an explicit null
func (b body) isNull(key string) bool {
	raw, ok := b[key]
	return ok && strings.TrimSpace(string(raw)) == "null"
}

// readJSON decodes the request body into dst field by field, so a bad value
// is reported against its own field, then runs struct validation
func readJSON(c *gin.Context, dst any) (body, error) {
	data, err := c.GetRawData()
	if err != nil {
		return nil, apperr.Validation("non_field_errors", "Could not read request body.")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	var raw body
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, apperr.Validation("non_field_errors", "Invalid JSON body")
	}
	verr := &apperr.ValidationError{}
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		msg, ok := raw[name]
		if name == "" || !ok {
			continue
		}
		if err := json.Unmarshal(msg, v.Field(i).Addr().Interface()); err != nil {
			verr.Add(name, decodeMessage(err))
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	if err := validate.Struct(dst); err != nil {
		return nil, validationError(err)
	}
	return raw, nil
}

func decodeMessage(err error) string {
	if te, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Sprintf("Invalid value, expected %s.", te.Type.String())
	}
	return strings.ToUpper(err.Error()[:1]) + err.Error()[1:] + "."
}

// validationError converts validator errors into the per-field map
func validationError(err error) error {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Validation("non_field_errors", err.Error())
	}
	out := &apperr.ValidationError{}
	for _, fe := range ves {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	}
	return "Invalid value."
}
