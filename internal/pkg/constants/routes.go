package constants

// Static route constants
const (
	APIRoute = "/api"

	// operational endpoints, never behind API middleware
	HealthRoute  = "/healthz"
	ReadyRoute   = "/readyz"
	MetricsRoute = "/metrics"
	MonitorRoute = "/monitor"

	// Swagger UI lives at DocsBasePath + DocsVersion
	DocsBasePath = "/docs/api/"
	DocsVersion  = "v1"
)
