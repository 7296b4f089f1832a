package middleware

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validator wraps a shared validator instance for request bodies
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates a struct against its validate tags
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// ParseAndValidate parses the request body into dst and validates it,
// writing the error response itself. Returns false when the handler
// should stop.
func (v *Validator) ParseAndValidate(c *fiber.Ctx, dst interface{}) bool {
	if err := c.BodyParser(dst); err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"msg":   err.Error(),
		})
		return false
	}

	if err := v.Validate(dst); err != nil {
		fields := make(map[string]string)
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				fields[fieldErr.Field()] = fieldErr.Tag()
			}
		}
		c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
		return false
	}

	return true
}
