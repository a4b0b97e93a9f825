package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Vietnamese mobile and landline numbers, optionally +84 prefixed
	PhonePattern = `^(\+84|84|0)(3|5|7|8|9|2[0-9])[0-9]{8}$`

	// 24h clock time
	ClockPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`

	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone *regexp.Regexp
	Clock *regexp.Regexp
}{
	Phone: regexp.MustCompile(PhonePattern),
	Clock: regexp.MustCompile(ClockPattern),
}

// IsPhone reports whether s is a Vietnamese phone number. Spaces and dots are ignored.
func IsPhone(s string) bool {
	s = strings.NewReplacer(" ", "", ".", "", "-", "").Replace(s)
	return CompiledPatterns.Phone.MatchString(s)
}

// IsClock reports whether s is HH:MM
func IsClock(s string) bool {
	return CompiledPatterns.Clock.MatchString(s)
}

// IsISODate reports whether s is YYYY-MM-DD
func IsISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// RegisterRules adds the custom tags and reports field names by their JSON key
func RegisterRules(v *validator.Validate) error {
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

	rules := map[string]validator.Func{
		"vnphone": func(fl validator.FieldLevel) bool { return IsPhone(fl.Field().String()) },
		"hhmm":    func(fl validator.FieldLevel) bool { return IsClock(fl.Field().String()) },
		"isodate": func(fl validator.FieldLevel) bool { return IsISODate(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGinValidators installs the rules on gin's binding validator
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterRules(v)
}
