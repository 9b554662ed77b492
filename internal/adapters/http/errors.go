package http

import "github.com/gofiber/fiber/v2"

// The marker API's error body is a single {error} field, the shape map
// clients already parse. Request IDs travel in the X-Request-ID header
// rather than the body.
type errorBody struct {
	Error string `json:"error"`
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody{Error: msg})
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(errorBody{Error: msg})
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: msg})
}
