package models

// ImageStorage names where an ingested image ended up.
type ImageStorage string

const (
	// ImageStorageS3 means the image lives in object storage and only its
	// URL is kept.
	ImageStorageS3 ImageStorage = "s3"
	// ImageStorageInline means the original encoded bytes are kept on the
	// record and served inline.
	ImageStorageInline ImageStorage = "inline"
)

// ImageUploadResponse is returned by POST /api/upload-image.
type ImageUploadResponse struct {
	Success     bool         `json:"success"`
	ImageURL    string       `json:"image_url,omitempty"`
	ImageBase64 string       `json:"image_base64,omitempty"`
	Storage     ImageStorage `json:"storage"`
}
