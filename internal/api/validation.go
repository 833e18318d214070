package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Details []ValidationError `json:"details"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerCustom(v)
	})
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
}

// ValidateStruct validates a struct and returns formatted errors
func ValidateStruct(s interface{}) []ValidationError {
	RegisterValidators()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		v = validator.New()
		registerCustom(v)
	}
	return formatErrors(v.Struct(s))
}

func formatErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: getErrorMessage(fe),
		})
	}
	return out
}

// getErrorMessage returns a user-friendly error message
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "notblank":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "isodate":
		return err.Field() + " must be a date formatted as YYYY-MM-DD"
	default:
		return err.Field() + " is invalid"
	}
}

// RespondWithValidationErrors sends validation errors as JSON response
func RespondWithValidationErrors(c *gin.Context, errs []ValidationError) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:   "validation failed",
		Details: errs,
	})
}

// BindJSON binds and validates the request body, writing a 400 response on failure.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if details := formatErrors(err); len(details) > 0 {
			RespondWithValidationErrors(c, details)
			return false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
