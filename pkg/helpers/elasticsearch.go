package helpers

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/devcamper-api/config"
)

// ErrSearchDisabled is returned when no Elasticsearch address is configured.
var ErrSearchDisabled = errors.New("elasticsearch: no addresses configured")

// NewESClient builds the search client from ELASTICSEARCH_* settings and checks
// that the cluster answers before handing it out.
func NewESClient(ctx context.Context, cfg *config.Config) (*elasticsearch.Client, error) {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil, ErrSearchDisabled
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     addrs,
		Username:      cfg.ElasticsearchUser,
		Password:      cfg.ElasticsearchPass,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := es.Ping(es.Ping.WithContext(pingCtx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return es, nil
}
