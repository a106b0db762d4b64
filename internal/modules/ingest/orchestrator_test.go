package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paperlab/core/internal/config"
	"github.com/paperlab/core/internal/models"
	"github.com/paperlab/core/internal/modules/assets"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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

// fakeParseServer mimics the parse service's task API: one submit endpoint,
// a status endpoint that walks through a scripted state sequence, and an
// artifact download.
type fakeParseServer struct {
	mu      sync.Mutex
	states  []string // consumed one per poll; last entry repeats
	errMsg  string
	zipData []byte
	polls   int
	submits int

	srv *httptest.Server
}

func newFakeParseServer(t *testing.T, states []string, zipData []byte, errMsg string) *fakeParseServer {
	t.Helper()
	f := &fakeParseServer{states: states, zipData: zipData, errMsg: errMsg}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/extract/task", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.submits++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]string{"task_id": "task-1"},
		})
	})
	mux.HandleFunc("/api/v4/extract/task/task-1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		idx := f.polls
		if idx >= len(f.states) {
			idx = len(f.states) - 1
		}
		state := f.states[idx]
		f.polls++
		f.mu.Unlock()

		data := map[string]string{"state": state}
		if state == StateDone {
			data["full_zip_url"] = f.srv.URL + "/artifact.zip"
		}
		if state == StateFailed {
			data["err_msg"] = f.errMsg
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "data": data})
	})
	mux.HandleFunc("/artifact.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(f.zipData)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeParseServer) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func newTestOrchestrator(t *testing.T, endpoint string, maxAttempts int) (*Orchestrator, *assets.Service, *[]time.Duration) {
	t.Helper()
	cfg := config.MineruConfig{
		Endpoint:        endpoint,
		Token:           "test-token",
		ModelVersion:    "vlm",
		PollIntervalSec: 3,
		PollMaxAttempts: maxAttempts,
	}
	assetSvc := assets.NewService(openTestDB(t))
	orch := NewOrchestrator(cfg, assetSvc, zap.NewNop())

	var slept []time.Duration
	orch.sleep = func(d time.Duration) { slept = append(slept, d) }
	return orch, assetSvc, &slept
}

func TestRunCompletesAndRewritesMarkdown(t *testing.T) {
	zipData := buildZip(t, []zipMember{
		{"full.md", []byte("# Paper\n![fig](images/fig1.png)")},
		{"images/fig1.png", []byte{0x89, 0x50, 0x4e, 0x47}},
	})
	fake := newFakeParseServer(t, []string{"pending", "running", StateDone}, zipData, "")
	orch, assetSvc, slept := newTestOrchestrator(t, fake.srv.URL, 10)

	result := orch.Run(context.Background(), "arxiv_2503.14443", "https://arxiv.org/pdf/2503.14443.pdf")

	require.Equal(t, StatusDone, result.Status)
	require.Contains(t, result.Markdown, "![fig](api/images/arxiv_2503.14443_fig1.png)")
	require.Equal(t, 3, fake.pollCount())
	require.Len(t, *slept, 3)
	require.Equal(t, 3*time.Second, (*slept)[0])

	img, err := assetSvc.Get("arxiv_2503.14443", "fig1.png")
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, img.Data)
}

func TestRunTimesOutAfterPollBudget(t *testing.T) {
	fake := newFakeParseServer(t, []string{"pending"}, nil, "")
	orch, _, slept := newTestOrchestrator(t, fake.srv.URL, 4)

	result := orch.Run(context.Background(), "arxiv_1", "https://example.com/a.pdf")

	require.Equal(t, StatusTimeout, result.Status)
	require.Equal(t, 4, fake.pollCount())
	require.Len(t, *slept, 4)
}

func TestRunReportsFailure(t *testing.T) {
	fake := newFakeParseServer(t, []string{"pending", StateFailed}, nil, "source file is corrupt")
	orch, _, _ := newTestOrchestrator(t, fake.srv.URL, 10)

	result := orch.Run(context.Background(), "arxiv_1", "https://example.com/a.pdf")

	require.Equal(t, StatusFailed, result.Status)
	require.Equal(t, "source file is corrupt", result.Message)
}

func TestRunFailsOnEmptyArtifact(t *testing.T) {
	zipData := buildZip(t, []zipMember{{"images/fig1.png", []byte{1}}})
	fake := newFakeParseServer(t, []string{StateDone}, zipData, "")
	orch, _, _ := newTestOrchestrator(t, fake.srv.URL, 10)

	result := orch.Run(context.Background(), "arxiv_1", "https://example.com/a.pdf")

	require.Equal(t, StatusFailed, result.Status)
	require.Contains(t, result.Message, "no markdown")
}

func TestRunSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": -60012, "msg": "invalid token"})
	}))
	t.Cleanup(srv.Close)
	orch, _, slept := newTestOrchestrator(t, srv.URL, 10)

	result := orch.Run(context.Background(), "arxiv_1", "https://example.com/a.pdf")

	require.Equal(t, StatusError, result.Status)
	require.Contains(t, result.Message, "invalid token")
	require.Empty(t, *slept)
}

func TestRunToleratesTransientPollErrors(t *testing.T) {
	zipData := buildZip(t, []zipMember{{"full.md", []byte("content")}})

	var polls int
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/extract/task", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]string{"task_id": "task-1"},
		})
	})
	mux.HandleFunc("/api/v4/extract/task/task-1", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls == 1 {
			fmt.Fprint(w, "temporarily unavailable")
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]string{"state": StateDone, "full_zip_url": srv.URL + "/artifact.zip"},
		})
	})
	mux.HandleFunc("/artifact.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	orch, _, _ := newTestOrchestrator(t, srv.URL, 10)
	result := orch.Run(context.Background(), "arxiv_1", "https://example.com/a.pdf")

	require.Equal(t, StatusDone, result.Status)
	require.Equal(t, "content", result.Markdown)
	require.Equal(t, 2, polls)
}

func TestSubmitWithoutToken(t *testing.T) {
	client := NewClient(config.MineruConfig{Endpoint: "http://127.0.0.1:0", ModelVersion: "vlm"})

	_, err := client.Submit(context.Background(), "https://example.com/a.pdf")
	require.ErrorIs(t, err, ErrNoToken)
	require.True(t, IsRejection(err))
}

func TestSubmitSendsCredentialAndModel(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]string{"task_id": "task-9"},
		})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.MineruConfig{Endpoint: srv.URL, Token: "secret", ModelVersion: "vlm"})
	taskID, err := client.Submit(context.Background(), "https://example.com/a.pdf")
	require.NoError(t, err)
	require.Equal(t, "task-9", taskID)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "https://example.com/a.pdf", gotBody["url"])
	require.Equal(t, "vlm", gotBody["model_version"])
}

func TestSubmitRejectionIsDetectable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": -500, "msg": "quota exceeded"})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.MineruConfig{Endpoint: srv.URL, Token: "secret", ModelVersion: "vlm"})
	_, err := client.Submit(context.Background(), "https://example.com/a.pdf")
	require.ErrorIs(t, err, ErrRejected)
	require.True(t, IsRejection(err))
	require.True(t, strings.Contains(err.Error(), "quota exceeded"))
}
