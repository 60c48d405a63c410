package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
)

// MakeHTTPHandleFunc binds a dependency to a handler. A returned error is
// rendered as a 500 envelope.
func MakeHTTPHandleFunc[S any](handler func(c *fiber.Ctx, store S) error, store S) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.InternalServerError(c, err.Error())
		}
		return nil
	}
}
