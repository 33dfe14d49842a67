package shares

import (
	"io"
	"time"
)

// Metadata describes one stored artifact. It is persisted next to the blob
// and is the only source of the artifact's expiry.
type Metadata struct {
	ID                 string    `json:"id"`
	OriginalName       string    `json:"originalName"`
	MimeType           string    `json:"mimeType"`
	SizeBytes          int64     `json:"sizeBytes"`
	UploadedAt         time.Time `json:"uploadedAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
	ParentCollectionID string    `json:"parentCollectionId,omitempty"`
	Checksum           string    `json:"checksum,omitempty"`
}

// Expired reports whether the artifact is past its expiry at now.
func (m Metadata) Expired(now time.Time) bool {
	return now.After(m.ExpiresAt)
}

// UploadInput is a file handed to Service.Upload.
type UploadInput struct {
	FileName     string
	ContentType  string
	Body         io.Reader
	CollectionID string
}

// Download is a resolved artifact ready to stream. Body must be closed.
type Download struct {
	Meta        Metadata
	Body        io.ReadCloser
	FileName    string
	ContentType string
}
