package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ecopick/recycle-api/internal/model"
)

// RegisterValidators installs the domain validators on gin's binding
// engine and makes validation errors report JSON field names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// material: the value must be one of the accepted material types.
	_ = v.RegisterValidation("material", func(fl validator.FieldLevel) bool {
		return model.IsAllowedMaterial(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}
