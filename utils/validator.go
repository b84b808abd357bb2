package utils

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a request field to the problems found with it.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// String renders the errors as "field: msg; field: msg" in a stable order.
func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(f[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// Validator wraps go-playground/validator with json field names and the
// configured password policy.
type Validator struct {
	validate *validator.Validate
	policy   PasswordPolicy
}

func NewValidator(policy PasswordPolicy) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return policy.Check(fl.Field().String()) == nil
	})

	return &Validator{validate: validate, policy: policy}
}

// Struct validates s and returns nil when it is valid.
func (v *Validator) Struct(s interface{}) FieldErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"non_field_errors": {err.Error()}}
	}

	// Format validation errors
	errors := FieldErrors{}
	for _, err := range verrs {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			errors.Add(field, field+" is required")
		case "min":
			errors.Add(field, field+" must be at least "+param+" characters")
		case "max":
			errors.Add(field, field+" must be at most "+param+" characters")
		case "email":
			errors.Add(field, field+" must be a valid email")
		case "password":
			errors.Add(field, v.policy.Describe())
		default:
			errors.Add(field, field+" is invalid")
		}
	}
	return errors
}
