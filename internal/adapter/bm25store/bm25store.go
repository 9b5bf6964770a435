// Package bm25store implements the BM25-facing slice of ports.StorePort
// using an in-process Bleve index over node title+body text, following the
// teacher pack's Bleve text-matching idiom (pkg/model/provider/rulebased).
package bm25store

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/hynous/memory-core/internal/model"
	"github.com/hynous/memory-core/internal/ports"
)

// Index is the sole owner of Bleve operations for keyword search over the
// memory graph's node text.
type Index struct {
	mu  sync.RWMutex
	idx bleve.Index
}

// New builds an in-memory Bleve index mapping node title and body as
// English-analyzed text fields.
func New() (*Index, error) {
	docMapping := mapping.NewDocumentMapping()
	textField := mapping.NewTextFieldMapping()
	textField.Analyzer = "en"
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("body", textField)

	indexMapping := mapping.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("bm25store: create index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Close releases the underlying Bleve index.
func (b *Index) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.idx.Close()
}

type nodeDoc struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// IndexNode upserts a node's searchable text. Bleve's Index call itself
// upserts by docID, so committing the same node twice simply re-indexes it.
func (b *Index) IndexNode(ctx context.Context, n model.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.idx.Index(n.ID, nodeDoc{Title: n.Title, Body: n.Body}); err != nil {
		return fmt.Errorf("bm25store: index node %s: %w", n.ID, err)
	}
	return nil
}

// DeleteNode removes a node from the index.
func (b *Index) DeleteNode(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.idx.Delete(id); err != nil {
		return fmt.Errorf("bm25store: delete node %s: %w", id, err)
	}
	return nil
}

// BM25Search runs a disjunction match query over title and body and returns
// hits with Bleve's raw (not normalized) relevance score, per
// ports.StorePort.BM25Search's documented contract.
func (b *Index) BM25Search(ctx context.Context, terms []string, limit int) ([]ports.ScoredHit, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	queryText := ""
	for i, t := range terms {
		if i > 0 {
			queryText += " "
		}
		queryText += t
	}

	titleQuery := bleve.NewMatchQuery(queryText)
	titleQuery.SetField("title")
	bodyQuery := bleve.NewMatchQuery(queryText)
	bodyQuery.SetField("body")
	query := bleve.NewDisjunctionQuery(titleQuery, bodyQuery)

	req := bleve.NewSearchRequest(query)
	req.Size = limit

	results, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bm25store: search: %w", err)
	}

	hits := make([]ports.ScoredHit, 0, len(results.Hits))
	for _, h := range results.Hits {
		hits = append(hits, ports.ScoredHit{NodeID: h.ID, Score: h.Score})
	}
	return hits, nil
}
