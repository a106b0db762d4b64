package arxiv

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/pkg/response"
)

type Handler struct{ client *Client }

func NewHandler(client *Client) *Handler { return &Handler{client: client} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/arxiv/info", h.info)
}

// GET /api/arxiv/info?id=2503.14443
func (h *Handler) info(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		response.BadRequest(c, "id parameter is required")
		return
	}

	info, err := h.client.Info(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "paper not found")
		return
	}
	if err != nil {
		response.UpstreamError(c, err.Error())
		return
	}
	response.OK(c, info)
}
