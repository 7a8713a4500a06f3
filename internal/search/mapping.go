package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for item documents.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = en.AnalyzerName
	titleField.Store = true
	docMapping.AddFieldMappingsAt("title", titleField)

	// Unstemmed copy so "repub" prefixes "Republic".
	titleWordsField := bleve.NewTextFieldMapping()
	titleWordsField.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("title_words", titleWordsField)

	// Names keep their spelling; stemming "Plato" helps nobody.
	authorsField := bleve.NewTextFieldMapping()
	authorsField.Analyzer = simple.Name
	authorsField.Store = true
	docMapping.AddFieldMappingsAt("authors", authorsField)

	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = simple.Name
	tagsField.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsField)

	for _, name := range []string{"id", "item_type", "added_by"} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = name == "item_type"
		docMapping.AddFieldMappingsAt(name, f)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
