package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	v *validator.Validate
)

func init() {
	v = validator.New()

	// report json (or yaml) name instead of the go field name, error message then matches the request body
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return field.Name
	})
}

func Validate(i interface{}) error {
	if i == nil {
		return fmt.Errorf("data to validate is nil")
	}

	return v.Struct(i)
}

// Var validates single variable using tag, i.e: Var("a@b.c", "required,email").
func Var(field interface{}, tag string) error {
	return v.Var(field, tag)
}
