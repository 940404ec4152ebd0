package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names so errors match request payloads.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			return IsValidPrice(fl.Field().String())
		})

		validate = v
	})
	return validate
}

// IsValidPrice reports whether s is a non-negative decimal number such as "19.99".
func IsValidPrice(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

// Validate checks struct tags of an entity and converts failures to ValidationErrors.
func Validate(entity any) error {
	err := entityValidator().Struct(entity)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out.Add(fieldPath(fe), messageFor(fe))
	}
	return out
}

// fieldPath drops the root struct name: "Service.offers[0].name" -> "offers[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "price":
		return "must be a non-negative number"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "max":
		return "must contain at most " + fe.Param() + " items"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}
