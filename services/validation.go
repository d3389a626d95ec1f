package services

import (
	"reflect"
	"regexp"
	"strings"

	"journal-desk/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

var basicEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validator checks form structs and renders English messages keyed by the
// field's errkey tag, or its json name.
type Validator struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewValidator() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if key := fld.Tag.Get("errkey"); key != "" {
			return key
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("nonempty", func(fl validator.FieldLevel) bool {
		return fl.Field().Len() > 0
	})

	addMessage(v, trans, "basicemail", "{0} must be a valid email address")
	addMessage(v, trans, "notblank", "{0} is required")
	addMessage(v, trans, "required", "{0} is required")
	addMessage(v, trans, "nonempty", "{0} must not be empty")

	return &Validator{Validate: v, Translator: trans}
}

func addMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
		return t.Add(tag, text, true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	})
}

// Check validates s and returns the failures in struct field order, or nil.
func (v *Validator) Check(s any) *models.FieldErrors {
	err := v.Validate.Struct(s)
	if err == nil {
		return nil
	}
	errs := models.NewFieldErrors()
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Set("form", err.Error())
		return errs
	}
	for _, fe := range verrs {
		if !errs.Has(fe.Field()) {
			errs.Set(fe.Field(), fe.Translate(v.Translator))
		}
	}
	return errs
}
