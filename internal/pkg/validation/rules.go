package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/attendance-admin/internal/app/models"
)

// Validation rule patterns
var (
	// SubjectCodePattern allows codes such as "CS101" or "MATH-201"
	SubjectCodePattern = `^[A-Z0-9]+(-[A-Z0-9]+)*$`

	// EnrollmentNumberPattern allows letters, digits and dashes
	EnrollmentNumberPattern = `^[A-Za-z0-9-]+$`
)

// MaxNameLength is the column width of student, subject and faculty names
const MaxNameLength = 255

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	SubjectCode      *regexp.Regexp
	EnrollmentNumber *regexp.Regexp
}{
	SubjectCode:      regexp.MustCompile(SubjectCodePattern),
	EnrollmentNumber: regexp.MustCompile(EnrollmentNumberPattern),
}

// Register installs the custom tags used by form structs and makes
// field errors report the `label` tag instead of the Go field name.
// Subject codes are checked after NormalizeSubjectCode, so "cs101" passes
// and is stored upper-cased.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	if err := v.RegisterValidation("subjectcode", func(fl validator.FieldLevel) bool {
		return IsValidSubjectCode(NormalizeSubjectCode(fl.Field().String()))
	}); err != nil {
		return err
	}

	return v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.RoleType(fl.Field().String()).Valid()
	})
}

// NormalizeSubjectCode trims and upper-cases a code before validation
func NormalizeSubjectCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidSubjectCode checks if a subject code is upper-case alphanumeric, optionally dash separated
func IsValidSubjectCode(code string) bool {
	return CompiledPatterns.SubjectCode.MatchString(code)
}

// IsValidEnrollmentNumber checks an enrollment number typed into forms or imported from sheets
func IsValidEnrollmentNumber(number string) bool {
	return len(number) <= 20 && CompiledPatterns.EnrollmentNumber.MatchString(number)
}

// FormatErrors turns validator field errors into sentences for flash messages
func FormatErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid form data."}
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatFieldError(e))
	}
	return messages
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required."
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters."
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters."
	case "email":
		return e.Field() + " must be a valid email address."
	case "oneof":
		return e.Field() + " must be one of: " + e.Param() + "."
	case "subjectcode":
		return e.Field() + " must be upper-case letters and digits, optionally separated by dashes."
	case "role":
		return e.Field() + " is not a valid role."
	case "datetime":
		return e.Field() + " must be a date formatted as YYYY-MM-DD."
	default:
		return e.Field() + " is invalid."
	}
}
