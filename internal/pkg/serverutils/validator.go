package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"rag-chatbot-be/internal/apperr"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and reports every failing field
// in one invalid-input error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindInvalidInput, "invalid request", err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperr.Invalid("validation failed: " + strings.Join(fields, ", "))
}
