package paper

import (
	"errors"
	"time"

	"github.com/paperlab/core/internal/models"
	"github.com/paperlab/core/internal/modules/assets"
	"github.com/paperlab/core/internal/pkg/pagination"
	"github.com/paperlab/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	assets *assets.Service
}

func NewService(db *gorm.DB, assetSvc *assets.Service) *Service {
	return &Service{db: db, assets: assetSvc}
}

// List returns papers newest-first, optionally filtered by tag.
func (s *Service) List(q pagination.Query, tag string) ([]models.PaperModel, response.Pagination, error) {
	tx := s.db.Model(&models.PaperModel{}).Order("updated_at DESC")
	if tag != "" {
		// Tags are stored as a JSON array in a text column.
		tx = tx.Where(`tags LIKE ?`, `%"`+tag+`"%`)
	}
	var items []models.PaperModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// GetByID fetches one paper by its numeric row identifier. Returns
// (nil, nil) when absent.
func (s *Service) GetByID(id uint) (*models.PaperModel, error) {
	var p models.PaperModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetByIdentity fetches one paper by its stable identity. Returns
// (nil, nil) when absent.
func (s *Service) GetByIdentity(identity string) (*models.PaperModel, error) {
	var p models.PaperModel
	if err := s.db.First(&p, "identity = ?", identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Save upserts a paper keyed by its numeric row identifier. On conflict
// every column except the row id is overwritten and the update timestamp
// refreshed. An unset identity is resolved before writing; a set identity
// is never rewritten.
func (s *Service) Save(p *models.PaperModel) error {
	if p.Identity == "" {
		p.Identity = ResolveIdentity(p.ArxivID, p.PDFURL, p.ID, time.Now())
	}
	p.UpdatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(p).Error
}

// Upsert writes a freshly ingested paper keyed by identity: an existing row
// with the same identity is overwritten in place (last writer wins), a new
// identity inserts a new row.
func (s *Service) Upsert(p *models.PaperModel) error {
	existing, err := s.GetByIdentity(p.Identity)
	if err != nil {
		return err
	}
	if existing != nil {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	return s.Save(p)
}

// Delete removes a paper and cascade-deletes its images, preventing
// orphaned binary data.
func (s *Service) Delete(id uint) error {
	p, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return gorm.ErrRecordNotFound
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.assets.WithTx(tx).DeleteForPaper(p.Identity); err != nil {
			return err
		}
		return tx.Delete(&models.PaperModel{}, "id = ?", id).Error
	})
}

// SaveDerived stores an analysis blob produced by a completion call on the
// given column and refreshes the update timestamp.
func (s *Service) SaveDerived(id uint, column, text string) error {
	return s.db.Model(&models.PaperModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{column: text, "updated_at": time.Now()}).Error
}
