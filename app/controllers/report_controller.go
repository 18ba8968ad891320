package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquaroute/aquaroute-api/app/models"
)

type ReportController struct {
	svc Service
}

func NewReportController(svc Service) *ReportController {
	return &ReportController{svc: svc}
}

// HandleListReports serves GET /api/reports?time_filter=1h|6h|24h
func (rc *ReportController) HandleListReports(c *fiber.Ctx) error {
	reports, err := rc.svc.ListReports(c.UserContext(), c.Query("time_filter"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(reports)
}

// HandleCreateReport serves POST /api/reports
func (rc *ReportController) HandleCreateReport(c *fiber.Ctx) error {
	var req models.ReportCreateRequest
	if err := parseJSON(c, &req); err != nil {
		return handleError(c, err)
	}
	report, err := rc.svc.CreateReport(c.UserContext(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(report)
}

// HandleVote serves POST /api/reports/:id/vote
func (rc *ReportController) HandleVote(c *fiber.Ctx) error {
	var req models.VoteRequest
	if err := parseJSON(c, &req); err != nil {
		return handleError(c, err)
	}
	res, err := rc.svc.Vote(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(res)
}
