package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^0\d{9}$`)
	xrayImagePattern = regexp.MustCompile(`^data:image/[a-zA-Z+.-]+;base64,`)
)

// MatchesPhone reports whether value is exactly 10 digits with a leading
// zero, e.g. 0993198176. Single home for the rule shared by the request
// validator tag and the usecase layer.
func MatchesPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// MatchesB64Image reports whether value carries a data:image/...;base64,
// prefix.
func MatchesB64Image(value string) bool {
	return xrayImagePattern.MatchString(value)
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// phone10: exactly 10 digits with a leading zero, e.g. 0993198176
	v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return MatchesPhone(fl.Field().String())
	})

	// b64image: a data:image/...;base64, prefixed payload
	v.RegisterValidation("b64image", func(fl validator.FieldLevel) bool {
		return MatchesB64Image(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gt":
				errors[field] = field + " must be greater than " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "phone10":
				errors[field] = field + " must be exactly 10 digits with a leading zero"
			case "b64image":
				errors[field] = field + " must be a valid base64 image"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
