package scholar

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/pkg/response"
)

type Handler struct{ client *Client }

func NewHandler(client *Client) *Handler { return &Handler{client: client} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

// GET /api/search?q=...&sort=relevance|citations&limit=N
func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.BadRequest(c, "q parameter is required")
		return
	}

	sortMode := c.DefaultQuery("sort", SortRelevance)
	if sortMode != SortRelevance && sortMode != SortCitations {
		response.BadRequest(c, "sort must be relevance or citations")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	results, err := h.client.Search(c.Request.Context(), q, sortMode, limit)
	if err != nil {
		response.UpstreamError(c, err.Error())
		return
	}
	response.OK(c, results)
}
