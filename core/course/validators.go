package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darslik/core"
)

var (
	lessonHoursTag  = "lessonhours"
	lessonHoursText = "hours per lesson cannot exceed the total hours"
)

// InitValidators registers the course validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newCourseStructValidation, NewCourse{})
	core.RegisterCustomTranslation(validate, translator, lessonHoursTag, lessonHoursText)
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Clean()
	return validate.Struct(nc)
}

func (ul *UpdateLesson) Validate(validate *validator.Validate) error {
	ul.Clean()
	return validate.Struct(ul)
}

func newCourseStructValidation(sl validator.StructLevel) {
	nc, ok := sl.Current().Interface().(NewCourse)
	if !ok {
		return
	}
	if nc.HoursPerLesson > 0 && nc.TotalHours > 0 && nc.HoursPerLesson > nc.TotalHours {
		sl.ReportError(nc.HoursPerLesson, "hours_per_lesson", "HoursPerLesson", lessonHoursTag, "")
	}
}
