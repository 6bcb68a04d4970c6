// Package search indexes bootcamps into Elasticsearch for full-text lookup.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

const (
	defaultSize = 10
	maxSize     = 50
)

type BootcampIndex struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewBootcampIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *BootcampIndex {
	return &BootcampIndex{es: es, index: index, logger: logger}
}

func bootcampDocument(b *entity.Bootcamp) map[string]any {
	doc := map[string]any{
		"id":          b.ID,
		"name":        b.Name,
		"slug":        b.Slug,
		"description": b.Description,
		"careers":     b.Careers,
		"photo":       b.Photo,
		"createdAt":   b.CreatedAt.Format(time.RFC3339Nano),
	}
	if b.Location != nil {
		doc["city"] = b.Location.City
		doc["state"] = b.Location.State
	}
	if b.AverageCost != nil {
		doc["averageCost"] = *b.AverageCost
	}
	if b.AverageRating != nil {
		doc["averageRating"] = *b.AverageRating
	}
	return doc
}

// bootcampMapping keeps the identifier and location facets as keywords so
// they are matched exactly instead of being tokenised.
var bootcampMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":            map[string]any{"type": "keyword"},
			"name":          map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"slug":          map[string]any{"type": "keyword"},
			"description":   map[string]any{"type": "text"},
			"careers":       map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"photo":         map[string]any{"type": "keyword", "index": false},
			"city":          map[string]any{"type": "keyword"},
			"state":         map[string]any{"type": "keyword"},
			"averageCost":   map[string]any{"type": "double"},
			"averageRating": map[string]any{"type": "double"},
			"createdAt":     map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the index with the bootcamp mapping when it does not exist yet.
// An existing index is left untouched.
func (i *BootcampIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(c, i.es)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	switch exists.StatusCode {
	case 200:
		return nil
	case 404:
	default:
		return fmt.Errorf("es index exists %s: %s", i.index, exists.Status())
	}

	body, err := json.Marshal(bootcampMapping)
	if err != nil {
		return err
	}
	res, err := esapi.IndicesCreateRequest{Index: i.index, Body: strings.NewReader(string(body))}.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 400 resource_already_exists_exception: another instance won the race.
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("es create index %s: %s", i.index, res.Status())
	}
	if i.logger != nil && !res.IsError() {
		i.logger.WithField("index", i.index).Info("created search index")
	}
	return nil
}

// Index upserts the bootcamp document.
func (i *BootcampIndex) Index(ctx context.Context, b *entity.Bootcamp) error {
	body, err := json.Marshal(bootcampDocument(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: b.ID, Body: strings.NewReader(string(body)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", b.ID, res.Status())
	}
	return nil
}

// Delete removes the bootcamp document. A missing document is not an error.
func (i *BootcampIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search performs a multi_match search on name, description and careers.
func (i *BootcampIndex) Search(ctx context.Context, q string, size int) ([]query.Record, error) {
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^3", "description", "careers^2"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := i.es.Search(i.es.Search.WithContext(c), i.es.Search.WithIndex(i.index), i.es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if i.logger != nil {
			i.logger.WithField("status", res.Status()).Warn("es search response error")
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]query.Record, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		rec := query.Record(h.Source)
		if rec == nil {
			rec = query.Record{}
		}
		rec["id"] = h.ID
		out = append(out, rec)
	}
	return out, nil
}
