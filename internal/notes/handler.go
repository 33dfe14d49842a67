package notes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lanshare-backend/internal/shared/server/respond"
)

const maxNoteBytes = 1 << 20

const (
	errorCodeValidation = "validation_error"
	errorCodeNotFound   = "not_found"
	errorCodeTooLarge   = "payload_too_large"
	errorCodeInternal   = "internal_error"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches note routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/text", h.create)
	r.GET("/api/text/:id", h.get)
	r.PUT("/api/text/:id", h.put)
	r.POST("/api/text/:id/append", h.appendText)
}

type contentRequest struct {
	Content *string `json:"content"`
}

// CreateResponse is returned when a note is created.
type CreateResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (h *Handler) bind(c *gin.Context) (contentRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxNoteBytes)

	var req contentRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respond.Error(c, http.StatusRequestEntityTooLarge, errorCodeTooLarge, "note too large", nil)
			return req, false
		}
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "invalid request body", nil)
		return req, false
	}
	return req, true
}

func (h *Handler) create(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	content := ""
	if req.Content != nil {
		content = *req.Content
	}

	n, err := h.Svc.Create(c.Request.Context(), content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, CreateResponse{ID: n.ID, URL: "/text/" + n.ID})
}

func (h *Handler) get(c *gin.Context) {
	n, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, n)
}

func (h *Handler) put(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	n, err := h.Svc.Put(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, n)
}

func (h *Handler) appendText(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	if req.Content == nil {
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, "content is required", nil)
		return
	}
	n, err := h.Svc.Append(c.Request.Context(), c.Param("id"), *req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.OK(c, n)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, errorCodeNotFound, "Text note not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, errorCodeValidation, err.Error(), nil)
	default:
		respond.ServerError(c, errorCodeInternal, "failed to save note", err)
	}
}
