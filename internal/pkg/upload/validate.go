package upload

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aquaroute/aquaroute-api/internal/pkg/apperr"
)

// SniffLen is how many leading bytes content sniffing looks at.
const SniffLen = 512

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
	".bmp":  true,
	// SVG stays out: it can carry script
}

var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
	"image/bmp":  true,
}

// ValidateImageBySniff checks the provided filename (extension) and the first bytes (head)
// against a whitelist of image types. Returns detected mime or an error.
func ValidateImageBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", apperr.Invalid("Only the following image formats are supported: JPG, JPEG, PNG, GIF, WEBP, AVIF, BMP")
	}

	detected := http.DetectContentType(head)
	if err := rejectScriptable(detected); err != nil {
		return "", err
	}

	// AVIF is not sniffed by net/http and comes back as octet-stream
	if detected == "application/octet-stream" {
		return detected, nil
	}
	if allowedMime[detected] {
		return detected, nil
	}
	return "", apperr.Invalid("File must be an image")
}

// ValidateInlineMime checks the sniffed type of an inline (base64) payload,
// which has no filename to go by.
func ValidateInlineMime(detected string) error {
	if err := rejectScriptable(detected); err != nil {
		return err
	}
	if !allowedMime[detected] {
		return apperr.Invalid("File must be an image")
	}
	return nil
}

func rejectScriptable(detected string) error {
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return apperr.Invalid("Invalid file type: HTML content is not allowed")
	}
	if strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") || detected == "image/svg+xml" {
		return apperr.Invalid("SVG/XML uploads are not supported")
	}
	return nil
}

// ReadFile reads an uploaded multipart file fully after validating its
// name and leading bytes. The returned mime is the sniffed type.
func ReadFile(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	head := data
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	mime, err := ValidateImageBySniff(fh.Filename, head)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}
