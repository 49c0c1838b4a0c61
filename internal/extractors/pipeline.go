package extractors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/mtm/internal/core/domain"
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.ExtractorPipeline = (*Pipeline)(nil)

// Pipeline runs several extractors over the same text.
type Pipeline struct {
	extractors []driven.Extractor
}

// NewPipeline creates a pipeline. Extractors run in the order provided.
func NewPipeline(extractors ...driven.Extractor) *Pipeline {
	return &Pipeline{
		extractors: extractors,
	}
}

// Extract returns the records of every extractor, concatenated in order.
func (p *Pipeline) Extract(ctx context.Context, text string, prov domain.Provenance) ([]domain.Extraction, error) {
	var out []domain.Extraction

	for _, extractor := range p.extractors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := extractor.Extract(ctx, text, prov)
		if err != nil {
			return nil, fmt.Errorf("extractor %s: %w", extractor.Name(), err)
		}
		out = append(out, records...)
	}

	return out, nil
}

// Add appends an extractor to the pipeline.
func (p *Pipeline) Add(extractor driven.Extractor) {
	p.extractors = append(p.extractors, extractor)
}

// Len returns the number of extractors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.extractors)
}
