package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/uuid"
)

var validate *validator.Validate

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Tell the validator to use the JSON tag as the “field name”
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// UUIDs validate as their string form; the nil UUID counts as empty.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		id, ok := v.Interface().(uuid.UUID)
		if !ok || id.IsNil() {
			return ""
		}
		return id.String()
	}, uuid.UUID{})

	mustRegister("image_format", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseImageFormat(fl.Field().String())
		return ok
	})
	mustRegister("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validator: %v", tag, err))
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ErrorsToMap maps each failing field to the tag it failed on.
func ErrorsToMap(validationErrs error) map[string]string {
	errsMap := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return errsMap
	}
	for _, fieldErr := range fieldErrs {
		errsMap[fieldErr.Field()] = fieldErr.Tag()
	}
	return errsMap
}

func ErrorsToJson(validationErrs error) (string, error) {
	errsJson, err := json.Marshal(ErrorsToMap(validationErrs))
	if err != nil {
		return "", err
	}
	return string(errsJson), nil
}

// ErrorsToMessages maps each failing field to a sentence a client can show as is.
func ErrorsToMessages(validationErrs error) map[string]string {
	out := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if !errors.As(validationErrs, &fieldErrs) {
		return out
	}
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
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
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "image_format":
		return fmt.Sprintf("Unsupported image format %q.", fe.Value())
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "gte", "lte", "gt", "lt":
		return fmt.Sprintf("Value must satisfy %s %s.", fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
