package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

var validate = newValidator()

// newValidator reports fields under their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "":
			return f.Name
		case "-":
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct applies the validate tags of v. When every failure is a
// missing required field the error code is MISSING_ARGUMENTS.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	details := make(map[string][]string, len(fieldErrs))
	onlyMissing := true
	for _, fe := range fieldErrs {
		name := fieldPath(fe)
		details[name] = append(details[name], describe(fe))
		onlyMissing = onlyMissing && fe.Tag() == "required"
	}
	if onlyMissing {
		return pkgerrors.New(pkgerrors.CodeMissingArguments, "missing arguments").WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// fieldPath drops the root struct so nested fields read as items[0].quantity.
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

var messages = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
	"url":      "enter a valid URL",
	"http_url": "enter a valid URL",
	"min":      "must be at least %s",
	"max":      "ensure this field has no more than %s characters",
	"oneof":    "must be one of: %s",
}

func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
