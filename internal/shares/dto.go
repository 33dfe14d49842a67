package shares

import "time"

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID        string    `json:"id"`
	ShareURL  string    `json:"shareUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MetadataResponse is the inspection view of an artifact.
type MetadataResponse struct {
	Metadata
	ShareURL string `json:"shareUrl"`
}
