package middleware

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-triage/internal/model"
	appvalidator "github.com/jwalitptl/clinic-triage/pkg/validator"
)

// TagSymptom is the binding tag accepting a known symptom name.
const TagSymptom = "symptom"

// RegisterValidators installs the triage tags on gin's binding validator.
// It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding validator is not go-playground/validator")
	}
	return appvalidator.Register(v, map[string]validator.Func{
		TagSymptom: validateSymptom,
	})
}

func validateSymptom(fl validator.FieldLevel) bool {
	_, err := model.ParseSymptom(fl.Field().String())
	return err == nil
}
