package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/paperlab/core/internal/config"
	"github.com/paperlab/core/internal/models"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned for operations on an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// ErrCompletionFailed wraps a provider failure. The user's turn is already
// persisted when this is returned; no assistant message is written.
var ErrCompletionFailed = errors.New("completion failed")

type Service struct {
	db       *gorm.DB
	cfg      *config.AppConfig
	complete CompleteFunc
}

func NewService(db *gorm.DB, cfg *config.AppConfig) *Service {
	return &Service{db: db, cfg: cfg, complete: Complete}
}

// CreateSession starts a new conversation session, optionally tied to a
// paper row.
func (s *Service) CreateSession(paperID *uint, title string) (*models.ChatSessionModel, error) {
	session := models.ChatSessionModel{
		UUID:    uuid.NewString(),
		PaperID: paperID,
		Title:   title,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns sessions most-recently-active first.
func (s *Service) ListSessions() ([]models.ChatSessionModel, error) {
	var sessions []models.ChatSessionModel
	err := s.db.Order("updated_at DESC").Find(&sessions).Error
	return sessions, err
}

// DeleteSession removes a session and cascade-deletes its messages.
func (s *Service) DeleteSession(sessionUUID string) error {
	session, err := s.getSession(sessionUUID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_uuid = ?", session.UUID).
			Delete(&models.ChatMessageModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSessionModel{}, "uuid = ?", session.UUID).Error
	})
}

// ListMessages returns every message of a session in chronological order.
func (s *Service) ListMessages(sessionUUID string) ([]models.ChatMessageModel, error) {
	if _, err := s.getSession(sessionUUID); err != nil {
		return nil, err
	}
	var messages []models.ChatMessageModel
	err := s.db.Where("session_uuid = ?", sessionUUID).
		Order("created_at ASC, id ASC").Find(&messages).Error
	return messages, err
}

// Append persists a user turn, assembles the bounded context window, calls
// the completion service, persists the assistant's reply, and returns it.
// A provider failure leaves the user message in place and returns
// ErrCompletionFailed; no assistant message is written.
func (s *Service) Append(sessionUUID, content, paperContext string) (*models.ChatMessageModel, error) {
	session, err := s.getSession(sessionUUID)
	if err != nil {
		return nil, err
	}

	userMsg := models.ChatMessageModel{
		SessionUUID: session.UUID,
		Role:        models.RoleUser,
		Content:     content,
	}
	if err := s.db.Create(&userMsg).Error; err != nil {
		return nil, err
	}
	if err := s.touchSession(session.UUID); err != nil {
		return nil, err
	}

	history, err := s.recentWindow(session.UUID)
	if err != nil {
		return nil, err
	}

	systemPrompt, prompt := buildChatPrompt(paperContext, history)
	reply, err := s.complete(s.cfg.ActiveAIProvider(), systemPrompt, prompt, s.cfg.AI.MaxTokens)
	if err != nil {
		return nil, errors.Join(ErrCompletionFailed, err)
	}

	assistantMsg := models.ChatMessageModel{
		SessionUUID: session.UUID,
		Role:        models.RoleAssistant,
		Content:     reply,
	}
	if err := s.db.Create(&assistantMsg).Error; err != nil {
		return nil, err
	}
	if err := s.touchSession(session.UUID); err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

// AnalyzePaper runs a kind-specific completion over a paper's extracted
// text and returns the generated blob.
func (s *Service) AnalyzePaper(kind, title, text string) (string, error) {
	systemPrompt, prompt, ok := buildAnalysisPrompt(kind, title, text)
	if !ok {
		return "", errors.New("unknown analysis kind: " + kind)
	}
	result, err := s.complete(s.cfg.ActiveAIProvider(), systemPrompt, prompt, s.cfg.AI.MaxTokens)
	if err != nil {
		return "", errors.Join(ErrCompletionFailed, err)
	}
	return result, nil
}

// recentWindow reads the HistoryWindow most recent messages newest-first
// and reverses them into chronological order.
func (s *Service) recentWindow(sessionUUID string) ([]models.ChatMessageModel, error) {
	var recent []models.ChatMessageModel
	err := s.db.Where("session_uuid = ?", sessionUUID).
		Order("created_at DESC, id DESC").
		Limit(HistoryWindow).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

func (s *Service) getSession(sessionUUID string) (*models.ChatSessionModel, error) {
	var session models.ChatSessionModel
	err := s.db.First(&session, "uuid = ?", sessionUUID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Service) touchSession(sessionUUID string) error {
	return s.db.Model(&models.ChatSessionModel{}).
		Where("uuid = ?", sessionUUID).
		Update("updated_at", time.Now()).Error
}
