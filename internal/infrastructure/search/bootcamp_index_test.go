package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

func newTestIndex(t *testing.T, h http.HandlerFunc) *BootcampIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewBootcampIndex(es, "bootcamps", nil)
}

func TestBootcampIndex_Search(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"b1","_source":{"name":"Devworks Bootcamp"}}]}}`))
	})

	recs, err := idx.Search(context.Background(), "devworks", 500)
	require.NoError(t, err)

	assert.Equal(t, "/bootcamps/_search", gotPath)
	assert.EqualValues(t, defaultSize, gotBody["size"])
	require.Len(t, recs, 1)
	assert.Equal(t, "b1", recs[0]["id"])
	assert.Equal(t, "Devworks Bootcamp", recs[0]["name"])
}

func TestBootcampIndex_Index(t *testing.T) {
	var gotPath, gotBody string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := idx.Index(context.Background(), &entity.Bootcamp{ID: "b1", Name: "ModernTech", Careers: []string{"Business"}})
	require.NoError(t, err)
	assert.Equal(t, "/bootcamps/_doc/b1", gotPath)
	assert.True(t, strings.Contains(gotBody, `"name":"ModernTech"`))
}

func TestBootcampIndex_DeleteMissingIsOK(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, idx.Delete(context.Background(), "b1"))
}

func TestBootcampIndex_EnsureIndexCreatesMissing(t *testing.T) {
	var calls []string
	var mapping map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &mapping)
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /bootcamps", "PUT /bootcamps"}, calls)
	props := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", props["slug"].(map[string]any)["type"])
}

func TestBootcampIndex_EnsureIndexKeepsExisting(t *testing.T) {
	var calls []string
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Equal(t, []string{"HEAD /bootcamps"}, calls)
}
