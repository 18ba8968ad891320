// Package ingestion turns client-supplied photos into a report image
// reference. It prefers object storage and degrades to keeping the encoded
// bytes inline; it never fails the caller.
package ingestion

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/aquaroute/aquaroute-api/app/models"
	"github.com/aquaroute/aquaroute-api/internal/pkg/imageprocessor"
	"github.com/aquaroute/aquaroute-api/internal/pkg/metrics"
	"github.com/aquaroute/aquaroute-api/internal/pkg/objectstore"
	"github.com/aquaroute/aquaroute-api/internal/pkg/upload"
)

const UploadTimeout = 30 * time.Second

// Uploader stores an object and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, body []byte, contentType string) (string, error)
}

// Result is where an image ended up.
type Result struct {
	ImageURL    string
	ImageBase64 string
	Storage     models.ImageStorage
}

// Apply copies the image reference onto report.
func (r Result) Apply(report *models.Report) {
	report.ImageURL = r.ImageURL
	report.ImageBase64 = r.ImageBase64
}

type Ingester struct {
	processor *imageprocessor.ImageProcessor
	uploader  Uploader
	clock     clockwork.Clock
	metrics   *metrics.Metrics
}

// New returns an Ingester. A nil uploader keeps every image inline.
func New(processor *imageprocessor.ImageProcessor, uploader Uploader, clock clockwork.Clock, m *metrics.Metrics) *Ingester {
	return &Ingester{
		processor: processor,
		uploader:  uploader,
		clock:     clock,
		metrics:   m,
	}
}

// IngestEncoded handles an inline payload, raw base64 or a data URL.
// Payloads that do not decode to an image are kept inline as received and
// never reach object storage.
func (i *Ingester) IngestEncoded(ctx context.Context, payload string) Result {
	inline := strings.TrimSpace(payload)
	data, mime, err := imageprocessor.DecodePayload(inline)
	if err != nil {
		log.Warnf("[Ingestion] Undecodable image payload kept inline: %v", err)
		return i.keepInline(inline)
	}
	if err := upload.ValidateInlineMime(mime); err != nil {
		log.Warnf("[Ingestion] Image payload of type %s kept inline: %v", mime, err)
		return i.keepInline(inline)
	}
	return i.ingest(ctx, data, inline)
}

func (i *Ingester) keepInline(inline string) Result {
	i.metrics.ImageIngestions.WithLabelValues(string(models.ImageStorageInline)).Inc()
	return Result{ImageBase64: inline, Storage: models.ImageStorageInline}
}

// IngestFile handles an uploaded file that has already passed
// upload.ValidateImageBySniff.
func (i *Ingester) IngestFile(ctx context.Context, data []byte, mime string) Result {
	inline := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return i.ingest(ctx, data, inline)
}

func (i *Ingester) ingest(ctx context.Context, data []byte, inline string) Result {
	if i.uploader == nil {
		return i.keepInline(inline)
	}

	start := i.clock.Now()
	res, err := i.processor.Transform(data)
	if err != nil {
		log.Warnf("[Ingestion] Transform failed, keeping image inline: %v", err)
		return i.keepInline(inline)
	}

	uctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := objectstore.ObjectKey(uuid.New().String(), ".webp", i.clock.Now().UTC())
	url, err := i.uploader.Upload(uctx, key, res.Data, res.ContentType)
	if err != nil {
		log.Warnf("[Ingestion] Upload of %s failed, keeping image inline: %v", key, err)
		return i.keepInline(inline)
	}

	i.metrics.ImageUploadDuration.Observe(i.clock.Since(start).Seconds())
	i.metrics.ImageIngestions.WithLabelValues(string(models.ImageStorageS3)).Inc()
	log.Infof("[Ingestion] Stored %dx%d image at %s", res.Width, res.Height, key)
	return Result{ImageURL: url, Storage: models.ImageStorageS3}
}
