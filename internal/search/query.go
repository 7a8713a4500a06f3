package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit caps results when Params.Limit is zero.
const DefaultLimit = 50

// Params configures a search.
type Params struct {
	Query    string
	ItemType string // exact item type filter, empty for all
	Limit    int
}

// Hit is one matching item.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
}

// Search returns matching item ids ordered by relevance. Title matches rank
// above author matches, which rank above tag matches.
func (s *ItemIndex) Search(ctx context.Context, params Params) ([]Hit, error) {
	if strings.TrimSpace(params.Query) == "" {
		return []Hit{}, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	req.Fields = []string{"title"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		title, _ := h.Fields["title"].(string)
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Title: title})
	}
	return hits, nil
}

func buildQuery(params Params) query.Query {
	q := strings.TrimSpace(params.Query)

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	authorMatch := bleve.NewMatchQuery(q)
	authorMatch.SetField("authors")
	authorMatch.SetBoost(2.0)

	tagMatch := bleve.NewMatchQuery(q)
	tagMatch.SetField("tags")
	tagMatch.SetBoost(1.5)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetField("title_words")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	text := []query.Query{titleMatch, authorMatch, tagMatch, fuzzy}

	// Prefix on the last word supports search-as-you-type.
	words := strings.Fields(strings.ToLower(q))
	if last := words[len(words)-1]; len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("title_words")
		prefix.SetBoost(0.5)
		text = append(text, prefix)
	}

	var root query.Query = bleve.NewDisjunctionQuery(text...)
	if params.ItemType != "" {
		typeFilter := bleve.NewTermQuery(params.ItemType)
		typeFilter.SetField("item_type")
		root = bleve.NewConjunctionQuery(root, typeFilter)
	}
	return root
}
