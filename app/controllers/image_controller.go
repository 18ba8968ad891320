package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
	"github.com/aquaroute/aquaroute-api/internal/pkg/upload"
)

type ImageController struct {
	svc Service
}

func NewImageController(svc Service) *ImageController {
	return &ImageController{svc: svc}
}

// HandleUploadImage serves POST /api/upload-image with a multipart "file".
// Storage failures never surface; the response says where the image went.
func (ic *ImageController) HandleUploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return handleError(c, apperr.Unprocessable("file is required"))
	}

	data, mime, err := upload.ReadFile(fh)
	if err != nil {
		return handleError(c, err)
	}

	res := ic.svc.UploadImage(c.UserContext(), data, mime)
	return c.JSON(models.ImageUploadResponse{
		Success:     true,
		ImageURL:    res.ImageURL,
		ImageBase64: res.ImageBase64,
		Storage:     res.Storage,
	})
}
