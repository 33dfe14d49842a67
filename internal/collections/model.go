package collections

import (
	"time"

	"lanshare-backend/internal/shares"
)

// Collection groups artifacts uploaded under one shareable id. Files are
// append-only and keep upload order.
type Collection struct {
	ID        string    `json:"id"`
	Files     []File    `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// File is a collection member. Its ID is the artifact id.
type File struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	SizeBytes    int64     `json:"sizeBytes"`
	MimeType     string    `json:"mimeType"`
	UploadedAt   time.Time `json:"uploadedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// HasFile reports whether fileID is a member.
func (c Collection) HasFile(fileID string) bool {
	for _, f := range c.Files {
		if f.ID == fileID {
			return true
		}
	}
	return false
}

func fileFromMetadata(meta shares.Metadata) File {
	return File{
		ID:           meta.ID,
		OriginalName: meta.OriginalName,
		SizeBytes:    meta.SizeBytes,
		MimeType:     meta.MimeType,
		UploadedAt:   meta.UploadedAt,
		ExpiresAt:    meta.ExpiresAt,
	}
}
