package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports violations by JSON field name, so "user_goal_ml"
// rather than "GoalML" reaches API clients.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs validator tags on a bound request payload.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
