package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks the `validate` tags on a request DTO and returns a
// ValidationError naming the first offending field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return &ValidationError{
			Field:   strings.ToLower(first.Field()),
			Message: fmt.Sprintf("field '%s' failed on '%s' validation", strings.ToLower(first.Field()), first.Tag()),
		}
	}

	return err
}
