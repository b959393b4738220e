package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API so Fx can collect them into one
// group and register them in a single invoke.
type Route interface {
	Setup(app *fiber.App)
}
