package router

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aquaroute/aquaroute-api/internal/pkg/constants"
	"github.com/aquaroute/aquaroute-api/internal/pkg/health"
)

// DefaultDocsFile is the OpenAPI document served under /docs/api/v1.
const DefaultDocsFile = "public/docs/v1/openapi.yml"

// SystemRouter serves probes, metrics, the Fiber monitor and the API docs.
type SystemRouter struct {
	checker  *health.Checker
	docsFile string
}

func (h SystemRouter) InstallRouter(app *fiber.App) {
	app.Get(constants.HealthRoute, h.checker.Liveness)
	app.Get(constants.ReadyRoute, h.checker.Readiness)
	app.Get(constants.MetricsRoute, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get(constants.MonitorRoute, monitor.New(monitor.Config{Title: "AquaRoute Monitor"}))

	// swagger.New panics on a missing file
	if h.docsFile == "" {
		return
	}
	if _, err := os.Stat(h.docsFile); err != nil {
		log.Warnf("[Router] API docs disabled: %v", err)
		return
	}
	app.Use(swagger.New(swagger.Config{
		BasePath: constants.DocsBasePath,
		FilePath: h.docsFile,
		Path:     constants.DocsVersion,
		Title:    "AquaRoute API",
	}))
}

// NewSystemRouter returns a SystemRouter. An empty docsFile disables the
// Swagger UI.
func NewSystemRouter(checker *health.Checker, docsFile string) *SystemRouter {
	return &SystemRouter{checker: checker, docsFile: docsFile}
}
