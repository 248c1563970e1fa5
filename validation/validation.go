// Package validation holds the request schemas shared by the registry and
// router entry points. Violations are collected exhaustively and rendered
// as an ordered list of human-readable messages, so a caller sees every
// broken rule in one round trip.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	// Report json field names, not Go struct field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

type JoinRequest struct {
	Name string `json:"name" validate:"required,notblank"`
}

type SendRequest struct {
	To   string `json:"to" validate:"required,min=1"`
	Text string `json:"text" validate:"required,min=1"`
	Type string `json:"type" validate:"required,oneof=message private_message"`
}

type FetchQuery struct {
	Limit *int `json:"limit" validate:"omitempty,gt=0"`
}

// Check evaluates every rule of the schema and returns all violations.
// A nil result means the request is valid.
func Check(req any) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	return lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return describe(fe)
	})
}

// ParseFetchQuery turns the raw limit query parameter into a validated
// FetchQuery. A missing parameter is valid; anything that is not a positive
// integer is a violation.
func ParseFetchQuery(rawLimit string) (FetchQuery, []string) {
	if rawLimit == "" {
		return FetchQuery{}, nil
	}
	n, err := strconv.Atoi(rawLimit)
	if err != nil {
		return FetchQuery{}, []string{"limit must be a positive number"}
	}
	query := FetchQuery{Limit: &n}
	return query, Check(query)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s character(s)", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
