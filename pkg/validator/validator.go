package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Gateway tokens look like "ExponentPushToken[xxxxxxxx]"
var pushTokenPattern = regexp.MustCompile(`^ExponentPushToken\[[A-Za-z0-9_-]+\]$`)

// Init sets up the shared validator instance and registers custom rules.
// Must be called once at startup before any Validate call.
func Init() {
	validate = validator.New()

	_ = validate.RegisterValidation("pushtoken", func(fl validator.FieldLevel) bool {
		return pushTokenPattern.MatchString(fl.Field().String())
	})
}

// Validate runs struct validation against the registered rules
func Validate(s interface{}) error {
	if validate == nil {
		Init()
	}
	return validate.Struct(s)
}

// IsPushToken reports whether a raw string is a well-formed gateway token
func IsPushToken(token string) bool {
	return pushTokenPattern.MatchString(token)
}
