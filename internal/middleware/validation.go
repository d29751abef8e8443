package middleware

import (
	"quizcraft/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateIDParam validates a ULID path parameter such as :quizId before the
// handler runs. Errors are surfaced through the ErrorHandler middleware.
func (vm *ValidationMiddleware) ValidateIDParam(param, field string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Params(param)
		if errs := vm.validator.ValidateIDParam(field, value); len(errs) > 0 {
			return errs
		}
		return c.Next()
	}
}
