package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harvesthub/marketplace/pkg/errors"
)

var validate = NewValidator()

// NewValidator reads the same `binding` tags gin uses and reports fields by their JSON name
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterJSONFieldNames(v)
	return v
}

// RegisterJSONFieldNames makes field errors use json tag names
func RegisterJSONFieldNames(v *validator.Validate) {
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
}

func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return errors.FromValidation(err)
	}
	return nil
}
