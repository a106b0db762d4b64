package assets

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paperlab/core/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PaperImageModel{}))
	return db
}

func TestSaveAndGet(t *testing.T) {
	svc := NewService(openTestDB(t))

	require.NoError(t, svc.Save("arxiv_1", "fig1.png", []byte{0x89, 0x50}, "image/png"))

	img, err := svc.Get("arxiv_1", "fig1.png")
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50}, img.Data)
	require.Equal(t, "image/png", img.Mime)
}

func TestSaveOverwrites(t *testing.T) {
	svc := NewService(openTestDB(t))

	require.NoError(t, svc.Save("arxiv_1", "fig1.png", []byte{1}, "image/png"))
	require.NoError(t, svc.Save("arxiv_1", "fig1.png", []byte{2, 3}, "image/jpeg"))

	img, err := svc.Get("arxiv_1", "fig1.png")
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, img.Data)
	require.Equal(t, "image/jpeg", img.Mime)
}

func TestGetMissing(t *testing.T) {
	svc := NewService(openTestDB(t))
	_, err := svc.Get("arxiv_1", "nope.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteForPaperScopedToIdentity(t *testing.T) {
	svc := NewService(openTestDB(t))

	require.NoError(t, svc.Save("arxiv_1", "fig1.png", []byte{1}, "image/png"))
	require.NoError(t, svc.Save("arxiv_2", "fig1.png", []byte{2}, "image/png"))

	require.NoError(t, svc.DeleteForPaper("arxiv_1"))

	_, err := svc.Get("arxiv_1", "fig1.png")
	require.ErrorIs(t, err, ErrNotFound)

	kept, err := svc.Get("arxiv_2", "fig1.png")
	require.NoError(t, err)
	require.Equal(t, []byte{2}, kept.Data)
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	require.NoError(t, svc.Save("arxiv_1", "fig1.png", []byte{1}, "image/png"))

	rollback := gorm.ErrInvalidTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.WithTx(tx).DeleteForPaper("arxiv_1"); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	// The rolled-back delete leaves the image in place.
	img, err := svc.Get("arxiv_1", "fig1.png")
	require.NoError(t, err)
	require.Equal(t, []byte{1}, img.Data)
}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))
	return r
}

func TestImageEndpoint(t *testing.T) {
	svc := NewService(openTestDB(t))
	require.NoError(t, svc.Save("arxiv_2503.14443", "fig1.png", []byte{0x89, 0x50, 0x4e, 0x47}, "image/png"))
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/images/arxiv_2503.14443_fig1.png", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, w.Body.Bytes())
	require.NotEmpty(t, w.Header().Get("Cache-Control"))
}

func TestImageEndpointInvalidRef(t *testing.T) {
	router := newTestRouter(NewService(openTestDB(t)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images/noseparator", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageEndpointMissing(t *testing.T) {
	router := newTestRouter(NewService(openTestDB(t)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images/arxiv_1_nope.png", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
