// Package assets persists per-paper images and rewrites embedded image
// references so they resolve through the image retrieval endpoint.
package assets

import (
	"errors"

	"github.com/paperlab/core/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no image exists for an (identity, filename) pair.
var ErrNotFound = errors.New("image not found")

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// WithTx returns a service bound to the given transaction handle, so
// callers can include image writes in their own transactions.
func (s *Service) WithTx(tx *gorm.DB) *Service { return &Service{db: tx} }

// Save stores an image under the (paper identity, filename) composite key.
// Re-ingesting a paper overwrites its images in place.
func (s *Service) Save(identity, filename string, data []byte, mime string) error {
	img := models.PaperImageModel{
		PaperIdentity: identity,
		Filename:      filename,
		Data:          data,
		Mime:          mime,
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&img).Error
}

// Get loads one image. Returns ErrNotFound when the pair is unknown.
func (s *Service) Get(identity, filename string) (*models.PaperImageModel, error) {
	var img models.PaperImageModel
	err := s.db.First(&img, "paper_identity = ? AND filename = ?", identity, filename).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteForPaper removes every image owned by the given identity.
func (s *Service) DeleteForPaper(identity string) error {
	return s.db.Where("paper_identity = ?", identity).Delete(&models.PaperImageModel{}).Error
}
