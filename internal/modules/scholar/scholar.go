// Package scholar queries the academic search index service for ranked
// paper candidates.
package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/paperlab/core/internal/config"
)

const searchFields = "title,abstract,authors,externalIds,citationCount,year,publicationDate"

// Sort modes accepted by Search.
const (
	SortRelevance = "relevance"
	SortCitations = "citations"
)

// Result is one ranked search candidate.
type Result struct {
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract"`
	Authors       []string `json:"authors"`
	Year          int      `json:"year"`
	CitationCount int      `json:"citation_count"`
	ArxivID       string   `json:"arxiv_id,omitempty"`
	Published     string   `json:"published,omitempty"`
}

// Client queries the search index service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(cfg config.ScholarConfig) *Client {
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	Data []struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
		ExternalIDs struct {
			ArXiv string `json:"ArXiv"`
		} `json:"externalIds"`
		CitationCount   int    `json:"citationCount"`
		Year            int    `json:"year"`
		PublicationDate string `json:"publicationDate"`
	} `json:"data"`
}

// Search runs a free-text query and returns candidates in the requested
// sort mode. Relevance keeps the service's own ranking; citations re-ranks
// by citation count.
func (c *Client) Search(ctx context.Context, query, sortMode string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty search query")
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {searchFields},
	}
	reqURL := c.endpoint + "/graph/v1/paper/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search index request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search index returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	results := make([]Result, 0, len(sr.Data))
	for _, paper := range sr.Data {
		r := Result{
			Title:         paper.Title,
			Abstract:      paper.Abstract,
			Year:          paper.Year,
			CitationCount: paper.CitationCount,
			ArxivID:       paper.ExternalIDs.ArXiv,
			Published:     paper.PublicationDate,
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		results = append(results, r)
	}

	if sortMode == SortCitations {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].CitationCount > results[j].CitationCount
		})
	}
	return results, nil
}
