package middleware

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/shopadmin-backend/internal/app/taxonomy"
	"github.com/ikkim/shopadmin-backend/internal/errors"
)

// SetupValidator configures gin's validator: JSON tag names in field errors
// and the custom taxonomy_label tag.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidations(v)
	}
}

func registerValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// A hierarchy label must be a real value: not blank, not the EMPTY sentinel.
	_ = v.RegisterValidation("taxonomy_label", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return s != "" && s != taxonomy.Empty
	})
}

// RespondWithBindingError writes a 400 for a failed ShouldBind call, with
// per-field messages when the failure came from validation.
func RespondWithBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = getValidationMessage(e)
		}
		errors.RespondWithValidationError(c, fields)
		return
	}
	errors.BadRequest(c, errors.ValidationInvalidFormat, "Malformed request body: "+err.Error())
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "datetime":
		return "Must be a date in " + e.Param() + " format"
	case "taxonomy_label":
		return "Must be a non-blank label other than " + taxonomy.Empty
	default:
		return "Invalid value"
	}
}
