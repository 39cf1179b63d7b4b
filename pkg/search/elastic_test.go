package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/config"
)

func testLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func esHandler(t *testing.T, fn http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v8 client rejects responses without the product header
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		fn(w, r)
	}))
}

func TestDisabledClientIsNoOp(t *testing.T) {
	c, err := NewClient(config.ElasticsearchConfig{Index: "kenya_law"}, testLog())
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	ctx := context.Background()
	assert.NoError(t, c.EnsureIndex(ctx))
	assert.NoError(t, c.IndexDocument(ctx, map[string]string{"title": "x"}, "x"))

	hits, err := c.Search(ctx, "penal", "", 5)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexDocumentUsesContentDerivedID(t *testing.T) {
	var capturedPath string
	srv := esHandler(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Write([]byte(`{"result":"created"}`))
	})
	defer srv.Close()

	c, err := NewClient(config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "kenya_law",
	}, testLog())
	require.NoError(t, err)
	require.True(t, c.Enabled())

	record := map[string]string{"document_type": "case_law", "case_name": "John Doe v Republic"}
	require.NoError(t, c.IndexDocument(context.Background(), record, "John Doe v Republic", "[2024] KEHC 100"))

	require.True(t, strings.HasPrefix(capturedPath, "/kenya_law/_doc/"))
	id := strings.TrimPrefix(capturedPath, "/kenya_law/_doc/")
	assert.Len(t, id, 16, "sha256-derived 16-hex ID")

	// Same key fields, same ID
	capturedPath = ""
	require.NoError(t, c.IndexDocument(context.Background(), record, "John Doe v Republic", "[2024] KEHC 100"))
	assert.Equal(t, "/kenya_law/_doc/"+id, capturedPath)
}

func TestEnsureIndexSkipsExisting(t *testing.T) {
	var created bool
	srv := esHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method == http.MethodPut {
			created = true
		}
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	c, err := NewClient(config.ElasticsearchConfig{Addresses: []string{srv.URL}, Index: "kenya_law"}, testLog())
	require.NoError(t, err)
	require.NoError(t, c.EnsureIndex(context.Background()))
	assert.False(t, created, "existing index must not be recreated")
}

func TestEnsureIndexCreatesWithMapping(t *testing.T) {
	var mapping map[string]any
	srv := esHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method == http.MethodPut {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&mapping))
		}
		w.Write([]byte(`{"acknowledged":true}`))
	})
	defer srv.Close()

	c, err := NewClient(config.ElasticsearchConfig{Addresses: []string{srv.URL}, Index: "kenya_law"}, testLog())
	require.NoError(t, err)
	require.NoError(t, c.EnsureIndex(context.Background()))

	require.NotNil(t, mapping)
	props := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", props["document_type"].(map[string]any)["type"])
	assert.Contains(t, props, "citation")
	assert.Contains(t, props, "legal_category")
}

func TestSearchParsesHits(t *testing.T) {
	srv := esHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/_search") {
			w.Write([]byte(`{"hits":{"hits":[
				{"_id":"abc","_score":1.5,"_source":{"case_name":"John Doe v Republic"}}
			]}}`))
			return
		}
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	c, err := NewClient(config.ElasticsearchConfig{Addresses: []string{srv.URL}, Index: "kenya_law"}, testLog())
	require.NoError(t, err)

	hits, err := c.Search(context.Background(), "doe", "case_law", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "abc", hits[0].ID)

	var src map[string]string
	require.NoError(t, json.Unmarshal(hits[0].Source, &src))
	assert.Equal(t, "John Doe v Republic", src["case_name"])
}
