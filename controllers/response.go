package controllers

import (
	"strings"

	"menu-app/services"
	"menu-app/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// bindJSON parses and validates the request body. Both failures are reported
// as invalid arguments.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return services.InvalidArgument("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" failed "+fe.Tag())
			}
			return services.InvalidArgument("validation failed: %s", strings.Join(fields, ", "))
		}
		return services.InvalidArgument("validation failed: %v", err)
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (types.SnowflakeID, error) {
	id, err := types.ParseSnowflakeID(c.Params(name))
	if err != nil {
		return 0, services.InvalidArgument("invalid %s: %v", name, err)
	}
	return id, nil
}
