package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")

	caser := cases.Title(language.Spanish)
	return caser.String(s)
}

// MapValidationError converts gin binding errors into MISSING_FIELDS when
// every failure is a missing value, and into INVALID_INPUT otherwise.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		missing := make([]string, 0, len(errs))
		for _, e := range errs {
			if e.Tag() != "required" {
				return InvalidField(formatFieldName(e.Field()))
			}
			missing = append(missing, e.Field())
		}
		return MissingFields(missing...)
	}

	return New(
		CodeValidation,
		"Entrada no válida",
		http.StatusBadRequest,
	)
}
