package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mission-desk/internal/domain"
	"mission-desk/internal/util"
)

// Validator provides request validation functionality
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so errors line up with the request body.
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
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("ulid", func(fl validator.FieldLevel) bool {
		return util.IsULID(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s by its `validate` tags. It returns nil or domain.ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.ValidationErrors{domain.NewValidationError(err.Error())}
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, toValidationError(fe))
	}
	return out
}

func toValidationError(fe validator.FieldError) domain.ValidationError {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required", "notblank":
		return domain.NewMissingFieldError(field)
	case "max", "min", "len":
		return domain.ValidationError{
			Field:   field,
			Code:    domain.CodeOutOfRange,
			Message: fmt.Sprintf("value violates %s=%s", fe.Tag(), fe.Param()),
		}
	default:
		return domain.NewInvalidFormatError(field, fe.Value())
	}
}

// fieldPath drops the top-level struct name from the namespace: "SavePlanRequest.tasks[0].title" -> "tasks[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
