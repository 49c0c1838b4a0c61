package driven

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// TaxonomyLoader reads the role taxonomy.
type TaxonomyLoader interface {
	// Load returns the taxonomy. A missing file yields the explicit empty
	// variant (domain.TaxonomyEmpty) rather than an error.
	Load(ctx context.Context) (domain.Taxonomy, error)
}
