package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router registers a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter installs the operational endpoints first so that probes
// and metrics never sit behind API middleware, then the JSON API.
func InstallRouter(app *fiber.App, system *SystemRouter, api *ApiRouter) {
	setup(app, system, api)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
