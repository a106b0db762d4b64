package paper

import (
	"fmt"
	"strings"
	"time"

	"github.com/paperlab/core/internal/models"
	"gorm.io/gorm"
)

const (
	arxivIdentityPrefix  = "arxiv_"
	pdfIdentityPrefix    = "pdf_"
	legacyIdentityPrefix = "legacy_"

	// arxivPlaceholder marks rows whose arxiv column never held a real
	// identifier.
	arxivPlaceholder = "PDF"
)

// ResolveIdentity derives the stable string identity for a paper. The same
// inputs always yield the same identity, in priority order: bibliographic
// identifier, source URL hash, row id + timestamp fallback.
func ResolveIdentity(arxivID, pdfURL string, rowID uint, now time.Time) string {
	arxivID = strings.TrimSpace(arxivID)
	if arxivID != "" && arxivID != arxivPlaceholder {
		return arxivIdentityPrefix + arxivID
	}
	if pdfURL = strings.TrimSpace(pdfURL); pdfURL != "" {
		return fmt.Sprintf("%s%08x", pdfIdentityPrefix, hashURL(pdfURL))
	}
	return fmt.Sprintf("%s%d_%d", legacyIdentityPrefix, rowID, now.UnixMilli())
}

// hashURL is a stable non-cryptographic 32-bit string hash
// (h = h*31 + ch with int32 wraparound, absolute value taken).
func hashURL(url string) uint32 {
	var h int32
	for _, ch := range url {
		h = h*31 + int32(ch)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return uint32(v)
}

// BackfillIdentities assigns identities to pre-existing papers that lack
// one. Identities that are already set are never changed.
func BackfillIdentities(db *gorm.DB) error {
	var rows []models.PaperModel
	if err := db.Where("identity IS NULL OR identity = ''").Find(&rows).Error; err != nil {
		return err
	}
	for i := range rows {
		identity := ResolveIdentity(rows[i].ArxivID, rows[i].PDFURL, rows[i].ID, time.Now())
		if err := db.Model(&rows[i]).Update("identity", identity).Error; err != nil {
			return err
		}
	}
	return nil
}
