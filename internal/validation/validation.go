// Package validation turns raw request input into normalized parameters or
// a list of field errors.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/snnyvrz/shelfshare-books/internal/apperror"
	"github.com/snnyvrz/shelfshare-books/internal/model"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

// Errors is the ordered list of every failed field of a request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

const failedMessage = "Validation failed"

// Failed wraps field errors into the BadRequest returned to clients.
func Failed(errs Errors) *apperror.Error {
	e := apperror.BadRequest(failedMessage, errs)
	e.Err = errs
	return e
}

var isbnPattern = regexp.MustCompile(`(?i)^[0-9X-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(optionalValue,
		model.Optional[string]{},
		model.Optional[int]{},
		model.Optional[float64]{},
		model.Optional[bool]{},
	)

	mustRegister(v, "isbn", func(fl validator.FieldLevel) bool {
		return isbnPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "maxyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(maxPublicationYear())
	})

	v.RegisterStructValidation(updateBookStructLevel, UpdateBookRequest{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func maxPublicationYear() int {
	return time.Now().Year() + 1
}

type optionalField interface {
	Interface() any
	IsNull() bool
	DecodeErr() error
	RawValue() any
}

func optionalValue(field reflect.Value) any {
	if f, ok := field.Interface().(optionalField); ok {
		return f.Interface()
	}
	return nil
}

func jsonFieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}

// checkStruct runs the tag rules of a request struct and returns every
// failure, including fields whose JSON type did not match, ordered by the
// declaration order of the struct fields.
func checkStruct(req any) Errors {
	rv := reflect.Indirect(reflect.ValueOf(req))
	rt := rv.Type()

	order := make(map[string]int, rt.NumField())
	reported := make(map[string]bool)
	var errs Errors

	for i := 0; i < rt.NumField(); i++ {
		name := jsonFieldName(rt.Field(i))
		order[name] = i

		f, ok := rv.Field(i).Interface().(optionalField)
		if !ok || f.DecodeErr() == nil {
			continue
		}
		errs = append(errs, FieldError{
			Field:   name,
			Message: typeMessage(name),
			Value:   f.RawValue(),
		})
		reported[name] = true
	}

	if err := validate.Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			panic(err)
		}
		for _, fe := range verrs {
			if reported[fe.Field()] {
				continue
			}
			errs = append(errs, FieldError{
				Field:   fe.Field(),
				Message: buildMessage(fe.Field(), fe.Tag()),
				Value:   fe.Value(),
			})
			reported[fe.Field()] = true
		}
	}

	sort.SliceStable(errs, func(i, j int) bool {
		return order[errs[i].Field] < order[errs[j].Field]
	})

	return errs
}

var labels = map[string]string{
	"title":            "Title",
	"author":           "Author",
	"isbn":             "ISBN",
	"publication_year": "Publication year",
	"genre":            "Genre",
	"pages":            "Pages",
	"description":      "Description",
	"price":            "Price",
	"in_stock":         "In stock",
}

var typeNames = map[string]string{
	"publication_year": "an integer",
	"pages":            "an integer",
	"price":            "a number",
	"in_stock":         "a boolean",
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func typeMessage(field string) string {
	if t, ok := typeNames[field]; ok {
		return label(field) + " must be " + t
	}
	return label(field) + " must be a string"
}

func buildMessage(field, tag string) string {
	switch tag {
	case "required":
		return label(field) + " is required"
	case "notnull":
		return label(field) + " cannot be null"
	}

	switch field {
	case "title", "author":
		return label(field) + " must be between 1 and 255 characters"
	case "isbn":
		if tag == "isbn" {
			return "ISBN can only contain digits, hyphens, and X"
		}
		return "ISBN must be between 10 and 20 characters"
	case "publication_year":
		return fmt.Sprintf("Publication year must be between 1000 and %d", maxPublicationYear())
	case "genre":
		return "Genre must be at most 100 characters"
	case "pages":
		return "Pages must be between 1 and 50000"
	case "description":
		return "Description must be at most 5000 characters"
	case "price":
		return "Price must be between 0 and 1000000"
	}

	return label(field) + " is invalid (" + tag + ")"
}
