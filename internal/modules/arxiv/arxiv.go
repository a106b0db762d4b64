// Package arxiv looks up bibliographic metadata for arXiv identifiers via
// the export API's Atom feed.
package arxiv

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paperlab/core/internal/config"
	pkgredis "github.com/paperlab/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the identifier resolves to no paper.
var ErrNotFound = errors.New("paper not found on arxiv")

// cacheTTL bounds how long a lookup result is reused.
const cacheTTL = 24 * time.Hour

// PaperInfo is the typed record returned by a lookup.
type PaperInfo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Abstract  string   `json:"abstract"`
	Authors   []string `json:"authors"`
	Published string   `json:"published"` // YYYY-MM-DD
	PDFURL    string   `json:"pdf_url"`
}

// Client queries the bibliographic lookup service, with an optional
// read-through redis cache (nil cache disables caching).
type Client struct {
	endpoint string
	http     *http.Client
	cache    *pkgredis.Client
	logger   *zap.Logger
}

func NewClient(cfg config.ArxivConfig, cache *pkgredis.Client, logger *zap.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		cache:    cache,
		logger:   logger,
	}
}

// Atom feed structures for the export API response.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// Info fetches metadata for one identifier, serving from cache when
// possible.
func (c *Client) Info(ctx context.Context, arxivID string) (*PaperInfo, error) {
	arxivID = strings.TrimSpace(arxivID)
	if arxivID == "" {
		return nil, errors.New("arxiv id is empty")
	}

	cacheKey := "arxiv:info:" + arxivID
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var info PaperInfo
		if err := json.Unmarshal([]byte(cached), &info); err == nil {
			return &info, nil
		}
	}

	reqURL := fmt.Sprintf("%s/api/query?id_list=%s", c.endpoint, url.QueryEscape(arxivID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv lookup returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse arxiv response: %w", err)
	}

	info, err := infoFromFeed(arxivID, feed)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(info); err == nil {
		if err := c.cache.Set(ctx, cacheKey, string(raw), cacheTTL); err != nil {
			c.logger.Debug("arxiv cache write failed", zap.Error(err))
		}
	}
	return info, nil
}

func infoFromFeed(arxivID string, feed atomFeed) (*PaperInfo, error) {
	if len(feed.Entries) == 0 {
		return nil, ErrNotFound
	}
	entry := feed.Entries[0]

	title := strings.TrimSpace(entry.Title)
	// The export API reports unknown ids through an error entry.
	if title == "" || strings.HasPrefix(title, "Error") {
		return nil, ErrNotFound
	}

	info := &PaperInfo{
		ID:       arxivID,
		Title:    title,
		Abstract: strings.TrimSpace(entry.Summary),
		PDFURL:   PDFURL(arxivID),
	}
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			info.Authors = append(info.Authors, name)
		}
	}
	if len(entry.Published) >= 10 {
		info.Published = entry.Published[:10]
	}
	return info, nil
}

// PDFURL returns the canonical PDF location for an arXiv identifier.
func PDFURL(arxivID string) string {
	return "https://arxiv.org/pdf/" + arxivID + ".pdf"
}
