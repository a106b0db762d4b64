package assets

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/images/:ref", h.get)
}

// GET /api/images/:ref
func (h *Handler) get(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("ref"))
	identity, filename, ok := SplitRef(ref)
	if !ok {
		response.BadRequest(c, "invalid image reference")
		return
	}

	img, err := h.svc.Get(identity, filename)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "image not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	mime := img.Mime
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Data(http.StatusOK, mime, img.Data)
}
