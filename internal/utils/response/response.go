package response

import (
	"github.com/gofiber/fiber/v2"
)

// Success writes the checkout success payload.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// Redirect writes the challenge-flow payload; the caller completes the
// charge on the processor's page.
func Redirect(c *fiber.Ctx, url string) error {
	return c.JSON(fiber.Map{
		"redirectUrl": url,
	})
}

// Error writes an error payload with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func ValidationError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}
