package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"lawscraper/pkg/config"
	"lawscraper/pkg/utils"
)

// Index mapping shared by all three record kinds, discriminated by the
// document_type keyword field.
const legalMapping = `{
  "mappings": {
    "properties": {
      "title":          {"type": "text"},
      "content":        {"type": "text"},
      "document_type":  {"type": "keyword"},
      "citation":       {"type": "keyword"},
      "court":          {"type": "keyword"},
      "judges":         {"type": "text"},
      "judgment_date":  {"type": "date", "ignore_malformed": true},
      "act_title":      {"type": "text"},
      "chapter_number": {"type": "keyword"},
      "year_enacted":   {"type": "integer"},
      "legal_category": {"type": "keyword"},
      "source_url":     {"type": "keyword"},
      "scraped_at":     {"type": "date"}
    }
  }
}`

// Client indexes records into the shared legal-documents index. A Client
// with no backing connection (empty address list) is valid: every operation
// becomes a logged no-op, matching runs without a search backend.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *logrus.Entry
}

// NewClient connects to the configured cluster. An empty address list
// returns a disabled client rather than an error.
func NewClient(cfg config.ElasticsearchConfig, log *logrus.Logger) (*Client, error) {
	c := &Client{index: cfg.Index, log: log.WithField("component", "search")}

	if len(cfg.Addresses) == 0 {
		c.log.Info("Elasticsearch not configured; indexing disabled")
		return c, nil
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", utils.ErrIndexing, err)
	}
	c.es = es
	return c, nil
}

// Enabled reports whether a backing cluster is configured.
func (c *Client) Enabled() bool {
	return c.es != nil
}

// EnsureIndex creates the index with the legal-document mapping if it does
// not already exist.
func (c *Client) EnsureIndex(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: check index %q: %v", utils.ErrIndexing, c.index, err)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(legalMapping))),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: create index %q: %v", utils.ErrIndexing, c.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: create index %q: %s", utils.ErrIndexing, c.index, res.String())
	}
	c.log.Infof("Created index %q", c.index)
	return nil
}

// IndexDocument stores one record under a content-derived ID: the same
// record indexed twice overwrites itself instead of duplicating. idParts are
// the record's key fields (case name and citation, or act title and
// chapter).
func (c *Client) IndexDocument(ctx context.Context, record any, idParts ...string) error {
	if !c.Enabled() {
		c.log.Debug("Indexing skipped (no backend)")
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: marshal record: %v", utils.ErrIndexing, err)
	}

	docID := utils.DocumentID(idParts...)
	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: docID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("%w: index document %s: %v", utils.ErrIndexing, docID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: index document %s: %s", utils.ErrIndexing, docID, res.String())
	}
	c.log.WithField("doc_id", docID).Debug("Indexed document")
	return nil
}

// Hit is one search result with its source record still raw.
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// Search runs a match query over the title and content fields, optionally
// filtered to one document_type. Returns at most size hits; a disabled
// client returns none.
func (c *Client) Search(ctx context.Context, query, documentType string, size int) ([]Hit, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if size <= 0 {
		size = 10
	}

	must := []map[string]any{
		{"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"title", "content", "act_title", "full_text"},
		}},
	}
	var filter []map[string]any
	if documentType != "" {
		filter = append(filter, map[string]any{
			"term": map[string]any{"document_type": documentType},
		})
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must, "filter": filter}},
		"size":  size,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %v", utils.ErrIndexing, err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", utils.ErrIndexing, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search: %s", utils.ErrIndexing, res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []Hit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", utils.ErrIndexing, err)
	}
	return parsed.Hits.Hits, nil
}
