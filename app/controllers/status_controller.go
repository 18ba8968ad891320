package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquaroute/aquaroute-api/app/models"
)

type StatusController struct {
	svc Service
}

func NewStatusController(svc Service) *StatusController {
	return &StatusController{svc: svc}
}

func (sc *StatusController) HandleCreateStatusCheck(c *fiber.Ctx) error {
	var req models.StatusCheckCreateRequest
	if err := parseJSON(c, &req); err != nil {
		return handleError(c, err)
	}
	check, err := sc.svc.CreateStatusCheck(c.UserContext(), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(check)
}

func (sc *StatusController) HandleListStatusChecks(c *fiber.Ctx) error {
	checks, err := sc.svc.ListStatusChecks(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(checks)
}
