package handler

import (
	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/validation"
)

// parseBody decodes the JSON body into req and validates it.
func parseBody(c *fiber.Ctx, v *validation.Validator, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	return v.Struct(req)
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(dto.OK(data))
}
