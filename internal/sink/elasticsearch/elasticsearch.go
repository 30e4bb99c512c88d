// Package elasticsearch indexes events as structured documents.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

func init() {
	sink.Register("elasticsearch", func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Extra["url"], cfg.Extra["index"])
	})
}

// Sink submits one document per event via the index API.
type Sink struct {
	client *es.Client
	index  string
}

// New creates a Sink targeting the given server URL and index name.
func New(url, index string) (*Sink, error) {
	if url == "" || index == "" {
		return nil, fmt.Errorf("elasticsearch sink: url and index are required")
	}
	client, err := es.NewClient(es.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch sink: %w", err)
	}
	return &Sink{client: client, index: index}, nil
}

// Deliver indexes the event. A non-2xx response is a delivery failure.
func (s *Sink) Deliver(ctx context.Context, event model.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("elasticsearch sink: marshal: %w", err)
	}

	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch sink: index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch sink: index returned %s", res.Status())
	}
	return nil
}

func (s *Sink) Name() string { return "elasticsearch" }

// Close is a no-op; the HTTP client holds no connection that outlives its
// idle pool.
func (s *Sink) Close() error { return nil }
