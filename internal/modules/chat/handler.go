package chat

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/pkg/response"
	"go.uber.org/zap"
)

// PaperContextFunc loads the context block for a paper row id: its title
// and extracted text. Injected to avoid coupling the chat module to the
// paper module.
type PaperContextFunc func(id uint) (title, text string, err error)

type Handler struct {
	svc          *Service
	paperContext PaperContextFunc
	logger       *zap.Logger
}

func NewHandler(svc *Service, paperContext PaperContextFunc, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, paperContext: paperContext, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/sessions")

	g.POST("", h.createSession)
	g.GET("", h.listSessions)
	g.DELETE("/:uuid", h.deleteSession)
	g.GET("/:uuid/messages", h.listMessages)
	g.POST("/:uuid/messages", h.appendMessage)
}

type createSessionDTO struct {
	PaperID *uint  `json:"paper_id"`
	Title   string `json:"title"`
}

type appendMessageDTO struct {
	Content string `json:"content" binding:"required"`
	PaperID *uint  `json:"paper_id"`
}

// POST /api/sessions
func (h *Handler) createSession(c *gin.Context) {
	var dto createSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	title := strings.TrimSpace(dto.Title)
	if title == "" {
		title = "New conversation"
	}

	session, err := h.svc.CreateSession(dto.PaperID, title)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, session)
}

// GET /api/sessions
func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, sessions)
}

// DELETE /api/sessions/:uuid
func (h *Handler) deleteSession(c *gin.Context) {
	err := h.svc.DeleteSession(c.Param("uuid"))
	if errors.Is(err, ErrSessionNotFound) {
		response.NotFound(c, "session not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// GET /api/sessions/:uuid/messages
func (h *Handler) listMessages(c *gin.Context) {
	messages, err := h.svc.ListMessages(c.Param("uuid"))
	if errors.Is(err, ErrSessionNotFound) {
		response.NotFound(c, "session not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, messages)
}

// POST /api/sessions/:uuid/messages
func (h *Handler) appendMessage(c *gin.Context) {
	var dto appendMessageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		response.BadRequest(c, "content is required")
		return
	}

	var paperContext string
	if dto.PaperID != nil && h.paperContext != nil {
		title, text, err := h.paperContext(*dto.PaperID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if title != "" || text != "" {
			paperContext = title + "\n\n" + text
		}
	}

	reply, err := h.svc.Append(c.Param("uuid"), content, paperContext)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(c, "session not found")
	case errors.Is(err, ErrCompletionFailed):
		h.logger.Warn("completion failed", zap.Error(err))
		response.UpstreamError(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.OK(c, reply)
	}
}
