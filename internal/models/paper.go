package models

import "time"

// PaperModel is an ingested academic paper. ID is the caller-supplied
// numeric row identifier; Identity is the stable string key derived by the
// identity resolver and never rewritten once set.
type PaperModel struct {
	ID         uint        `json:"id"         gorm:"primaryKey"`
	Identity   string      `json:"uuid"       gorm:"uniqueIndex;not null"`
	ArxivID    string      `json:"arxiv"      gorm:"index"`
	Title      string      `json:"title"`
	PDFURL     string      `json:"pdfUrl"`
	Date       string      `json:"date"`
	Parsed     bool        `json:"parsed"     gorm:"default:false"`
	Original   string      `json:"original"   gorm:"type:text"`
	Translated string      `json:"translated" gorm:"type:text"`
	Analysis   string      `json:"analysis"   gorm:"type:text"`
	PeerReview string      `json:"peerReview" gorm:"type:text"`
	Abstract   string      `json:"abstract"   gorm:"type:text"`
	Tags       StringArray `json:"tags"       gorm:"type:text"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (PaperModel) TableName() string { return "papers" }
