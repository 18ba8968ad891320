package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquaroute/aquaroute-api/app/models"
)

type CommentController struct {
	svc Service
}

func NewCommentController(svc Service) *CommentController {
	return &CommentController{svc: svc}
}

func (cc *CommentController) HandleListComments(c *fiber.Ctx) error {
	comments, err := cc.svc.ListComments(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(comments)
}

func (cc *CommentController) HandleCreateComment(c *fiber.Ctx) error {
	var req models.CommentCreateRequest
	if err := parseJSON(c, &req); err != nil {
		return handleError(c, err)
	}
	comment, err := cc.svc.CreateComment(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(comment)
}
