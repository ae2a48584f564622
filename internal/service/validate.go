package service

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/mmcdole/quill/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their form name rather than the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// messages maps "field.tag" (or just "field") to the text shown to the user
type messages map[string]string

func (m messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return field + " is invalid"
}

// validateStruct runs the struct tags of form and converts failures into a
// domain.ValidationError. extra holds checks the tags cannot express; its
// entries win over tag failures for the same field.
func validateStruct(form any, msgs messages, extra map[string]string) error {
	fields := make(map[string]string)

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			fields[fe.Field()] = msgs.lookup(fe.Field(), fe.Tag())
		}
	}
	for field, msg := range extra {
		if msg != "" {
			fields[field] = msg
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}
