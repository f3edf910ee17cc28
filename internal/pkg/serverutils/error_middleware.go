package serverutils

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateStruct runs the shared validator over a DTO.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ErrorHandlerMiddleware demotes uncaught errors and panics to a generic 500.
// Controllers that need specific status codes write their responses directly.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				_ = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
			}
		}()

		if err := ctx.Next(); err != nil {
			// Router and handler errors that already carry a status
			// (404 on unknown paths, 426 on missing upgrade) keep it.
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			log.Printf("unhandled route error: %v", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		return nil
	}
}
