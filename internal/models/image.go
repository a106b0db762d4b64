package models

// PaperImageModel stores one embedded image extracted during ingestion.
// The composite key means filenames only have to be unique within a single
// paper's identity namespace.
type PaperImageModel struct {
	PaperIdentity string `json:"paper_uuid" gorm:"primaryKey;not null"`
	Filename      string `json:"filename"   gorm:"primaryKey;not null"`
	Data          []byte `json:"-"          gorm:"type:blob"`
	Mime          string `json:"mime"`
}

func (PaperImageModel) TableName() string { return "paper_images" }
