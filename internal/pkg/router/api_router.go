package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquaroute/aquaroute-api/app/controllers"
	"github.com/aquaroute/aquaroute-api/internal/pkg/constants"
)

type ApiRouter struct {
	reports  *controllers.ReportController
	comments *controllers.CommentController
	images   *controllers.ImageController
	status   *controllers.StatusController
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute)
	api.Get("/", controllers.HandleRoot)

	api.Get("/reports", h.reports.HandleListReports)
	api.Post("/reports", h.reports.HandleCreateReport)
	api.Post("/reports/:id/vote", h.reports.HandleVote)
	api.Get("/reports/:id/comments", h.comments.HandleListComments)
	api.Post("/reports/:id/comments", h.comments.HandleCreateComment)

	api.Post("/upload-image", h.images.HandleUploadImage)

	api.Get("/status", h.status.HandleListStatusChecks)
	api.Post("/status", h.status.HandleCreateStatusCheck)
}

func NewApiRouter(svc controllers.Service) *ApiRouter {
	return &ApiRouter{
		reports:  controllers.NewReportController(svc),
		comments: controllers.NewCommentController(svc),
		images:   controllers.NewImageController(svc),
		status:   controllers.NewStatusController(svc),
	}
}
