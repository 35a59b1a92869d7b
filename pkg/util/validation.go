package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator bundles a validator with its english translator so validation failures can be reported as text.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &Validator{
		validate: validate,
		trans:    trans,
	}
}

// RegisterValidation adds a custom tag together with the message used when it fails.
// message may reference the field name with {0}.
func (v *Validator) RegisterValidation(tag string, fn validator.Func, message string) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	return v.validate.RegisterTranslation(tag, v.trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		})
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// TranslateError turns validator.ValidationErrors into one error per failed field.
func (v *Validator) TranslateError(err error) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(v.trans)))
	}
	return errs
}

// ValidationMessage joins the translated errors of err the way the http api reports them.
func (v *Validator) ValidationMessage(err error) string {
	vv := v.TranslateError(err)
	vvString := []string{}
	for _, e := range vv {
		vvString = append(vvString, e.Error())
	}
	return fmt.Sprintf("validation error: %v", vvString)
}

// FailedTags returns the validation tags that failed, in field order.
func FailedTags(err error) []string {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return nil
	}
	tags := make([]string, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		tags = append(tags, e.Tag())
	}
	return tags
}
