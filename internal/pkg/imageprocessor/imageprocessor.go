package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// decoders for uploads that arrive as WebP or BMP
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 800
	DefaultMaxHeight = 600
	DefaultQuality   = 80

	WebPContentType = "image/webp"
)

var ErrEmptyPayload = errors.New("empty image payload")

// Options bounds the output of Transform.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func DefaultOptions() Options {
	return Options{MaxWidth: DefaultMaxWidth, MaxHeight: DefaultMaxHeight, Quality: DefaultQuality}
}

// Result is a transformed image ready for upload.
type Result struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

type ImageProcessor struct {
	opts Options
}

func New(opts Options) *ImageProcessor {
	def := DefaultOptions()
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = def.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = def.MaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}
	return &ImageProcessor{opts: opts}
}

// Transform decodes data, rotates it upright according to its EXIF
// orientation, fits it inside the configured bounds without upscaling and
// re-encodes it as lossy WebP.
func (p *ImageProcessor) Transform(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	if o := ReadOrientation(data); o > 1 {
		img = ApplyOrientation(img, o)
	}

	src := img.Bounds()
	img = imaging.Fit(img, p.opts.MaxWidth, p.opts.MaxHeight, imaging.Lanczos)
	out := img.Bounds()
	log.Debugf("[ImageProcessor] %s %dx%d -> %dx%d", format, src.Dx(), src.Dy(), out.Dx(), out.Dy())

	encoded, err := p.encodeWebP(img)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:        encoded,
		Width:       out.Dx(),
		Height:      out.Dy(),
		ContentType: WebPContentType,
	}, nil
}

func (p *ImageProcessor) encodeWebP(img image.Image) ([]byte, error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(p.opts.Quality))
	if err != nil {
		return nil, fmt.Errorf("error creating encoder options: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("error encoding WebP: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePayload accepts raw base64 or a data URL ("data:<mime>;base64,<data>")
// and returns the decoded bytes with their sniffed content type.
func DecodePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", errors.New("malformed data URL")
		}
		if !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, "", errors.New("data URL is not base64 encoded")
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, "", ErrEmptyPayload
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}
	return data, http.DetectContentType(data), nil
}
