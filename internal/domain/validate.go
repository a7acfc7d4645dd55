package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the form field name ("title") instead of the Go name ("Title").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("field"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateInput checks the rules for a new listing.
func ValidateInput(op string, in ListingInput) error {
	return withOp(check(in), op, "")
}

// ValidatePatch checks the supplied fields of an update with the same rules as
// ValidateInput. Fields absent from the patch keep their stored values, which
// already passed validation.
func ValidatePatch(op, id string, p ListingPatch) error {
	return withOp(check(p), op, id)
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid("", "", FieldError{Field: "listing", Reason: err.Error()})
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return Invalid("", "", fields...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "is required"
	case "gte":
		return "must not be negative"
	default:
		return "is invalid"
	}
}
