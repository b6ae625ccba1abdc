package student

import (
	"regexp"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nawanshu18/student-result-management-system/core"
)

var (
	rollTag   = "roll"
	rollText  = "roll must be 1 to 32 letters, digits, '-', '_' or '/' and start with a letter or digit"
	rollRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/_-]{0,31}$`)

	dobTag  = "dob"
	dobText = "date of birth must be a past date formatted as DD-MM-YYYY"
	minDOB  = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// InitValidators registers the student validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(rollTag, rollValidation)
	core.RegisterCustomTranslation(validate, translator, rollTag, rollText)

	_ = validate.RegisterValidation(dobTag, dobValidation)
	core.RegisterCustomTranslation(validate, translator, dobTag, dobText)
}

func rollValidation(fl validator.FieldLevel) bool {
	return rollRegex.MatchString(fl.Field().String())
}

// dobValidation expects an already normalized DD-MM-YYYY date.
func dobValidation(fl validator.FieldLevel) bool {
	t, err := time.Parse(DOBLayout, fl.Field().String())
	if err != nil {
		return false
	}
	return !t.Before(minDOB) && t.Before(time.Now().UTC())
}
