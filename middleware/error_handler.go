package middleware

import (
	"menu-app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) (int, string) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		return fiber.StatusNotFound, string(services.KindNotFound)
	case services.KindInvalidArgument:
		return fiber.StatusBadRequest, string(services.KindInvalidArgument)
	case services.KindUnavailable:
		return fiber.StatusServiceUnavailable, string(services.KindUnavailable)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return fe.Code, string(services.KindNotFound)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return fe.Code, string(services.KindInvalidArgument)
		}
		return fe.Code, "HTTP_ERROR"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// ErrorHandler renders every error returned by a handler as
// {"success": false, "error": CODE, "message": ...}. Internal errors are logged
// and their details are not sent to the client.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, code := StatusFor(err)

		message := err.Error()
		var svcErr *services.Error
		if errors.As(err, &svcErr) {
			message = svcErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": requestID(c),
			}).Error("request failed")
			if code == "INTERNAL" {
				message = "internal server error"
			}
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   code,
			"message": message,
		})
	}
}
