// Package validation wires go-playground/validator with English messages
// keyed by JSON field names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/pal-tracker-api/pkg/errors"
)

var (
	mobileTag   = "mobile8"
	mobileText  = "{0} must be exactly 8 digits"
	mobileRegex = regexp.MustCompile(`^\d{8}$`)

	yearLabelTag   = "yearlabel"
	yearLabelText  = "{0} must look like 2025-26"
	yearLabelRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"

	requiredText = "{0} is required"
)

// Validator bundles a validator instance with its English translator.
type Validator struct {
	*validator.Validate
	translator ut.Translator
}

// New returns a Validator with custom tags and translations registered.
// It panics when a tag or translation cannot be registered.
func New() *Validator {
	v := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, found := uni.GetTranslator("en")
	if !found {
		panic("validation: english translator not available")
	}
	must(en_translations.RegisterDefaultTranslations(v, trans))

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

	must(v.RegisterValidation(mobileTag, func(fl validator.FieldLevel) bool {
		return mobileRegex.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation(yearLabelTag, func(fl validator.FieldLevel) bool {
		return yearLabelRegex.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation(notBlankTag, notBlank))

	must(registerTranslation(v, trans, mobileTag, mobileText, false))
	must(registerTranslation(v, trans, yearLabelTag, yearLabelText, false))
	must(registerTranslation(v, trans, notBlankTag, notBlankText, false))
	must(registerTranslation(v, trans, "required", requiredText, true))

	return &Validator{Validate: v, translator: trans}
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("validation: %v", err))
	}
}

// notBlank rejects strings that are empty once surrounding whitespace is removed.
func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// Check validates s and converts failures into a field-keyed validation error.
func (v *Validator) Check(s interface{}, message string) error {
	if err := v.Struct(s); err != nil {
		return v.Translate(err, message)
	}
	return nil
}

// Translate converts validator output into an appErrors validation error.
func (v *Validator) Translate(err error, message string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe)
		if _, exists := fields[key]; !exists {
			fields[key] = fe.Translate(v.translator)
		}
	}
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	return appErrors.WithFields(wrapped, fields)
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string, override bool) error {
	return v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
