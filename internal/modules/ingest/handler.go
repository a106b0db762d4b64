package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/config"
	"github.com/paperlab/core/internal/models"
	"github.com/paperlab/core/internal/modules/arxiv"
	"github.com/paperlab/core/internal/modules/paper"
	"github.com/paperlab/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	orch   *Orchestrator
	papers *paper.Service
	arxiv  *arxiv.Client
	cfg    *config.AppConfig
	logger *zap.Logger
}

func NewHandler(orch *Orchestrator, papers *paper.Service, arxivClient *arxiv.Client, cfg *config.AppConfig, logger *zap.Logger) *Handler {
	return &Handler{orch: orch, papers: papers, arxiv: arxivClient, cfg: cfg, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse", h.parse)
	rg.GET("/token", h.tokenStatus)
}

type parseDTO struct {
	Source     string `json:"source" binding:"required"`
	SourceType string `json:"sourceType"` // "arxiv" | "url"; inferred when empty
}

// POST /api/parse
func (h *Handler) parse(c *gin.Context) {
	var dto parseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "source is required")
		return
	}

	arxivID, sourceURL := normalizeSource(dto.Source, dto.SourceType)
	if sourceURL == "" {
		response.BadRequest(c, "invalid source")
		return
	}

	identity := paper.ResolveIdentity(arxivID, sourceURL, 0, time.Now())

	// Bibliographic lookup is best-effort; ingestion proceeds without it.
	var title, abstract, published string
	if arxivID != "" {
		if info, err := h.arxiv.Info(c.Request.Context(), arxivID); err == nil {
			title, abstract, published = info.Title, info.Abstract, info.Published
		} else {
			h.logger.Warn("bibliographic lookup failed",
				zap.String("arxiv_id", arxivID), zap.Error(err))
		}
	}

	// The poll loop is not tied to the request context: an abandoned
	// request does not cancel an in-flight parse job.
	result := h.orch.Run(context.Background(), identity, sourceURL)

	switch result.Status {
	case StatusDone:
		p := &models.PaperModel{
			Identity: identity,
			ArxivID:  arxivID,
			Title:    title,
			PDFURL:   sourceURL,
			Date:     published,
			Parsed:   true,
			Original: result.Markdown,
			Abstract: abstract,
		}
		if err := h.papers.Upsert(p); err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, p)
	case StatusTimeout:
		response.GatewayTimeout(c, result.Message)
	case StatusFailed:
		response.UpstreamError(c, result.Message)
	default:
		response.UpstreamError(c, result.Message)
	}
}

// GET /api/token
func (h *Handler) tokenStatus(c *gin.Context) {
	token := strings.TrimSpace(h.cfg.Mineru.Token)
	if token == "" {
		response.OK(c, gin.H{"configured": false})
		return
	}
	response.OK(c, gin.H{"configured": true, "masked": maskToken(token)})
}

// normalizeSource resolves the heterogeneous source field into an optional
// arXiv identifier and a definite source URL.
func normalizeSource(source, sourceType string) (arxivID, sourceURL string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ""
	}

	// A pasted arXiv PDF URL is treated as its identifier.
	if strings.Contains(source, "arxiv.org/pdf/") {
		id := source[strings.Index(source, "arxiv.org/pdf/")+len("arxiv.org/pdf/"):]
		id = strings.TrimSuffix(id, ".pdf")
		return id, arxiv.PDFURL(id)
	}

	switch sourceType {
	case "url":
		return "", source
	case "arxiv":
		return source, arxiv.PDFURL(source)
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "", source
	}
	return source, arxiv.PDFURL(source)
}

// maskToken hides the middle of a credential for status display.
func maskToken(token string) string {
	if len(token) > 20 {
		return token[:10] + "..." + token[len(token)-5:]
	}
	return "***"
}
