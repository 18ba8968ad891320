package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
	"github.com/aquaroute/aquaroute-api/internal/pkg/ingestion"
)

// Service is what the API handlers need from the report service.
type Service interface {
	CreateReport(ctx context.Context, req models.ReportCreateRequest) (*models.Report, error)
	ListReports(ctx context.Context, timeFilter string) ([]models.Report, error)
	Vote(ctx context.Context, reportID string, req models.VoteRequest) (*models.VoteResult, error)
	ListComments(ctx context.Context, reportID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, reportID string, req models.CommentCreateRequest) (*models.Comment, error)
	UploadImage(ctx context.Context, data []byte, mime string) ingestion.Result
	CreateStatusCheck(ctx context.Context, req models.StatusCheckCreateRequest) (*models.StatusCheck, error)
	ListStatusChecks(ctx context.Context) ([]models.StatusCheck, error)
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid:
		return fiber.StatusBadRequest
	case apperr.KindUnprocessable:
		return fiber.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// handleError writes err as an ErrorResponse. Anything that is not an
// *apperr.Error is logged and hidden behind a generic 500.
func handleError(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:  apperr.Kind(0).String(),
			Detail: "Internal server error",
		})
	}
	return c.Status(statusFor(ae.Kind)).JSON(ErrorResponse{
		Error:  ae.Kind.String(),
		Detail: ae.Message,
	})
}

// parseJSON decodes the request body into out. Any decoding failure,
// including a missing JSON content type, is unprocessable.
func parseJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Unprocessable("invalid JSON body: %v", err)
	}
	return nil
}
