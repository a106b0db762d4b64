package paper

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/models"
	"github.com/paperlab/core/internal/modules/assets"
	"github.com/paperlab/core/internal/modules/chat"
	"github.com/paperlab/core/internal/pkg/markdownutil"
	"github.com/paperlab/core/internal/pkg/pagination"
	"github.com/paperlab/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	svc  *Service
	chat *chat.Service
}

func NewHandler(svc *Service, chatSvc *chat.Service) *Handler {
	return &Handler{svc: svc, chat: chatSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/papers")

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.save)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/analyze", h.analyze)
	g.GET("/:id/render", h.render)
}

type savePaperDTO struct {
	ID         uint     `json:"id"`
	ArxivID    string   `json:"arxiv"`
	Title      string   `json:"title"`
	PDFURL     string   `json:"pdfUrl"`
	Date       string   `json:"date"`
	Parsed     *bool    `json:"parsed"`
	Original   string   `json:"original"`
	Translated string   `json:"translated"`
	Analysis   string   `json:"analysis"`
	PeerReview string   `json:"peerReview"`
	Abstract   string   `json:"abstract"`
	Tags       []string `json:"tags"`
}

type analyzeDTO struct {
	Kind string `json:"kind" binding:"required"`
}

// GET /api/papers?tag=
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, pag, err := h.svc.List(q, c.Query("tag"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /api/papers/:id
func (h *Handler) get(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	response.OK(c, p)
}

// POST /api/papers
func (h *Handler) save(c *gin.Context) {
	var dto savePaperDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	p := models.PaperModel{
		ID:         dto.ID,
		ArxivID:    dto.ArxivID,
		Title:      dto.Title,
		PDFURL:     dto.PDFURL,
		Date:       dto.Date,
		Original:   dto.Original,
		Translated: dto.Translated,
		Analysis:   dto.Analysis,
		PeerReview: dto.PeerReview,
		Abstract:   dto.Abstract,
		Tags:       dto.Tags,
	}
	if dto.Parsed != nil {
		p.Parsed = *dto.Parsed
	}

	// A row that already exists keeps its identity; everything else is
	// overwritten.
	if p.ID != 0 {
		existing, err := h.svc.GetByID(p.ID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if existing != nil {
			p.Identity = existing.Identity
			p.CreatedAt = existing.CreatedAt
		}
	}

	if err := h.svc.Save(&p); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, p)
}

// DELETE /api/papers/:id
func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.svc.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "paper not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// POST /api/papers/:id/analyze
func (h *Handler) analyze(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}
	var dto analyzeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if p.Original == "" {
		response.BadRequest(c, "paper has no extracted content to analyze")
		return
	}

	result, err := h.chat.AnalyzePaper(dto.Kind, p.Title, p.Original)
	if errors.Is(err, chat.ErrCompletionFailed) {
		response.UpstreamError(c, err.Error())
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	column := map[string]string{
		chat.KindAnalysis:    "analysis",
		chat.KindReview:      "peer_review",
		chat.KindTranslation: "translated",
	}[dto.Kind]
	if err := h.svc.SaveDerived(p.ID, column, result); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"kind": dto.Kind, "content": result})
}

// GET /api/papers/:id/render?variant=original|translated
func (h *Handler) render(c *gin.Context) {
	p, ok := h.lookup(c)
	if !ok {
		return
	}

	text := p.Original
	if c.Query("variant") == "translated" {
		text = p.Translated
	}

	html, err := markdownutil.Render(text)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	html = assets.RewriteHTML(p.Identity, html)
	response.OK(c, gin.H{"html": html})
}

func (h *Handler) lookup(c *gin.Context) (*models.PaperModel, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	p, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if p == nil {
		response.NotFound(c, "paper not found")
		return nil, false
	}
	return p, true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid paper id")
		return 0, false
	}
	return uint(id), true
}
