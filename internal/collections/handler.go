package collections

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/server/respond"
	"lanshare-backend/internal/shares"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = shares.DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches collection routes. upload wraps the file upload
// endpoint.
func (h *Handler) RegisterRoutes(r gin.IRouter, upload ...gin.HandlerFunc) {
	r.POST("/api/file/collection", h.create)
	r.POST("/api/file/collection/:id", append(upload, h.upload)...)
	r.GET("/api/file/collection/:id", h.get)
	r.GET("/api/file/:collectionId/download/:fileId", h.download)
}

// CreateResponse is returned when a collection is created.
type CreateResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UploadResponse is returned after a file is appended.
type UploadResponse struct {
	File       File       `json:"file"`
	Collection Collection `json:"collection"`
}

func (h *Handler) create(c *gin.Context) {
	col, err := h.Svc.Create(c.Request.Context())
	if err != nil {
		respond.ServerError(c, shares.ErrorCodeStorage, "failed to create collection", err)
		return
	}
	c.Set("collectionId", col.ID)
	respond.OK(c, CreateResponse{ID: col.ID, URL: "/file/" + col.ID})
}

func (h *Handler) upload(c *gin.Context) {
	collectionID := c.Param("id")
	c.Set("collectionId", collectionID)
	if !ids.Valid(collectionID) {
		respond.Error(c, http.StatusBadRequest, shares.ErrorCodeValidation, "invalid collection id", nil)
		return
	}

	fileHeader, ok := shares.FormFile(c, h.MaxUploadBytes)
	if !ok {
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, shares.ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	f, col, err := h.Svc.Upload(c.Request.Context(), collectionID, shares.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Set("shareId", f.ID)
	respond.OK(c, UploadResponse{File: f, Collection: col})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("collectionId", id)

	col, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, col)
}

func (h *Handler) download(c *gin.Context) {
	collectionID := c.Param("collectionId")
	fileID := c.Param("fileId")
	c.Set("collectionId", collectionID)
	c.Set("shareId", fileID)

	d, err := h.Svc.ResolveFile(c.Request.Context(), collectionID, fileID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	shares.WriteDownload(c, d)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorruptRecord):
		respond.Error(c, http.StatusNotFound, shares.ErrorCodeNotFound, "File collection not found", nil)
	case errors.Is(err, ErrNotMember):
		respond.Error(c, http.StatusNotFound, shares.ErrorCodeNotFound, "File not found in collection", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, shares.ErrorCodeValidation, err.Error(), nil)
	default:
		shares.RespondError(c, err)
	}
}
