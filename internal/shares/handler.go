package shares

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/shared/metrics"
	"lanshare-backend/internal/shared/server/respond"
	"lanshare-backend/internal/shared/telemetry"
	"lanshare-backend/internal/shared/util"
)

// DefaultMaxUploadBytes bounds a single multipart upload.
const DefaultMaxUploadBytes = 100 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	PublicBaseURL  string
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, publicBaseURL string, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, PublicBaseURL: publicBaseURL, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches share routes. upload wraps the upload endpoint,
// typically with a rate limiter.
func (h *Handler) RegisterRoutes(r gin.IRouter, upload ...gin.HandlerFunc) {
	r.POST("/upload", append(upload, h.upload)...)
	r.GET("/share/:id", h.download)
	r.GET("/api/share/:id", h.inspect)
}

// ShareURL builds the public download link for an artifact.
func (h *Handler) ShareURL(c *gin.Context, id string) string {
	return util.BaseURL(h.PublicBaseURL, c.Request) + "/share/" + id
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, ok := FormFile(c, h.MaxUploadBytes)
	if !ok {
		return
	}
	meta, ok := UploadFormFile(c, h.Svc, fileHeader, "")
	if !ok {
		return
	}
	c.Set("shareId", meta.ID)

	respond.OK(c, UploadResponse{
		ID:        meta.ID,
		ShareURL:  h.ShareURL(c, meta.ID),
		ExpiresAt: meta.ExpiresAt,
	})
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set("shareId", id)

	d, err := h.Svc.Resolve(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	WriteDownload(c, d)
}

func (h *Handler) inspect(c *gin.Context) {
	id := c.Param("id")
	c.Set("shareId", id)

	meta, err := h.Svc.Inspect(c.Request.Context(), id)
	if err == nil && meta.Expired(h.Svc.now()) {
		err = ErrExpired
	}
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, MetadataResponse{Metadata: meta, ShareURL: h.ShareURL(c, meta.ID)})
}

// FormFile reads the multipart "file" field under a body size limit. On
// failure it writes the error response and returns false.
func FormFile(c *gin.Context, maxBytes int64) (*multipart.FileHeader, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge,
				fmt.Sprintf("file exceeds %d bytes", maxBytes), nil)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "No file uploaded", nil)
		return nil, false
	}
	return fileHeader, true
}

// UploadFormFile stores a parsed multipart file. On failure it writes the
// error response and returns false.
func UploadFormFile(c *gin.Context, svc *Service, fileHeader *multipart.FileHeader, collectionID string) (Metadata, bool) {
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return Metadata{}, false
	}
	defer file.Close()

	meta, err := svc.Upload(c.Request.Context(), UploadInput{
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Body:         file,
		CollectionID: collectionID,
	})
	if err != nil {
		RespondError(c, err)
		return Metadata{}, false
	}
	return meta, true
}

// WriteDownload streams d to the client and closes its body. A client that
// disconnects mid-stream aborts the copy on the next failed write.
func WriteDownload(c *gin.Context, d Download) {
	defer d.Body.Close()

	c.Header("Content-Type", d.ContentType)
	c.Header("Content-Disposition", contentDisposition(d.FileName))
	c.Header("Content-Length", strconv.FormatInt(d.Meta.SizeBytes, 10))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	metrics.IncDownloads()

	n, err := io.Copy(c.Writer, d.Body)
	if err != nil {
		telemetry.Warn("shares.download_aborted", map[string]any{
			"share_id":   d.Meta.ID,
			"bytes_sent": n,
			"size_bytes": d.Meta.SizeBytes,
			"request_id": c.GetString("requestId"),
			"error":      err,
		})
	}
}

// RespondError maps service errors to HTTP responses.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.IncNotFoundHits()
		respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "File not found", nil)
	case errors.Is(err, ErrExpired):
		metrics.IncExpiredHits()
		respond.Error(c, http.StatusGone, ErrorCodeExpired, "Link expired", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case isTooLarge(err):
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "file too large", nil)
	case errors.Is(err, context.Canceled):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "upload aborted", nil)
	case errors.Is(err, ErrStorageWrite):
		respond.ServerError(c, ErrorCodeStorage, "Failed to store file", err)
	default:
		respond.ServerError(c, ErrorCodeInternal, "Failed to read file", err)
	}
}

func contentDisposition(name string) string {
	v := `attachment; filename="` + name + `"`
	if !isASCII(name) {
		v += "; filename*=UTF-8''" + encodeExtValue(name)
	}
	return v
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char
// set.
func encodeExtValue(s string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[ch>>4])
		b.WriteByte(hexDigits[ch&0x0f])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
