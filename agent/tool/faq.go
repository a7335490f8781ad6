package tool

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"gonum.org/v1/gonum/floats"

	contractx "github.com/electromart/agenthub/agent/contract"
)

// Embedder turns text into a vector. Optional: without it the FAQ index
// answers from the full-text side alone.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// FAQIndex answers FAQ lookups. With an embedder configured it ranks by
// cosine similarity over precomputed question+answer vectors; otherwise it
// falls back to an in-memory bleve full-text match.
type FAQIndex struct {
	entries  []contractx.FAQEntry
	index    bleve.Index
	embedder Embedder
	vectors  [][]float64
}

func NewFAQIndex(ctx context.Context, entries []contractx.FAQEntry, embedder Embedder) (*FAQIndex, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create faq index: %w", err)
	}

	for i, entry := range entries {
		doc := map[string]string{
			"question": entry.Question,
			"answer":   entry.Answer,
		}
		if err := index.Index(strconv.Itoa(i), doc); err != nil {
			return nil, fmt.Errorf("index faq entry: %w", err)
		}
	}

	idx := &FAQIndex{
		entries: append([]contractx.FAQEntry(nil), entries...),
		index:   index,
	}

	if embedder != nil {
		vectors := make([][]float64, 0, len(entries))
		for _, entry := range entries {
			vec, err := embedder.Embed(ctx, entry.Question+"\n"+entry.Answer)
			if err != nil {
				return nil, fmt.Errorf("embed faq entry: %w", err)
			}
			vectors = append(vectors, vec)
		}
		idx.embedder = embedder
		idx.vectors = vectors
	}

	return idx, nil
}

func (f *FAQIndex) Search(ctx context.Context, query string, k int) ([]contractx.FAQEntry, error) {
	if k <= 0 {
		k = 4
	}
	if len(f.entries) == 0 {
		return nil, nil
	}

	if f.embedder != nil {
		out, err := f.searchByEmbedding(ctx, query, k)
		if err == nil {
			return out, nil
		}
		// Embedding capability errors degrade to the text index.
	}
	return f.searchByText(ctx, query, k)
}

func (f *FAQIndex) searchByEmbedding(ctx context.Context, query string, k int) ([]contractx.FAQEntry, error) {
	qv, err := f.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(f.vectors))
	for i, vec := range f.vectors {
		ranked = append(ranked, scored{idx: i, score: cosine(qv, vec)})
	}
	for i := 0; i < len(ranked) && i < k; i++ {
		best := i
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].score > ranked[best].score {
				best = j
			}
		}
		ranked[i], ranked[best] = ranked[best], ranked[i]
	}

	out := make([]contractx.FAQEntry, 0, k)
	for i := 0; i < len(ranked) && i < k; i++ {
		out = append(out, f.entries[ranked[i].idx])
	}
	return out, nil
}

func (f *FAQIndex) searchByText(ctx context.Context, query string, k int) ([]contractx.FAQEntry, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := f.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: faq search: %v", contractx.ErrToolFailure, err)
	}

	out := make([]contractx.FAQEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(f.entries) {
			continue
		}
		out = append(out, f.entries[i])
	}
	return out, nil
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
