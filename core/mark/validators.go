package mark

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nawanshu18/student-result-management-system/core"
)

var (
	scoreLeMaxTag  = "scorelemax"
	scoreLeMaxText = "score cannot be greater than max_score"
)

// InitValidators registers the mark validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(markStructValidation, NewMark{})
	core.RegisterCustomTranslation(validate, translator, scoreLeMaxTag, scoreLeMaxText)
}

// markStructValidation checks that the score never exceeds the max score.
func markStructValidation(sl validator.StructLevel) {
	if nm, ok := sl.Current().Interface().(NewMark); ok {
		if nm.MaxScore > 0 && nm.Score > nm.MaxScore {
			sl.ReportError(nm.Score, "score", "Score", scoreLeMaxTag, "")
		}
	}
}
