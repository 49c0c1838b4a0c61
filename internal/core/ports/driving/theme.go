package driving

import (
	"context"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// ThemeService discovers themes in a project's segments.
type ThemeService interface {
	// Analyze runs theme discovery for one project ("" for all segments)
	// and persists the resulting themes.
	Analyze(ctx context.Context, project string) (*ThemeReport, error)

	// AnalyzeAll analyses projects in parallel. One project's failure does
	// not stop the others; failures are reported per project in the result.
	AnalyzeAll(ctx context.Context, projects []string) ([]ThemeReport, error)

	// List returns stored themes for a project ("" for all).
	List(ctx context.Context, project string) ([]domain.Theme, error)
}

// ThemeReport is the outcome of analysing one project.
type ThemeReport struct {
	// Project is the analysed project.
	Project string

	// Strategy is the path the engine took.
	Strategy domain.Strategy

	// Relaxed is true if vectorisation needed the relaxed retry.
	Relaxed bool

	// SegmentCount is the number of segments analysed.
	SegmentCount int

	// Themes are the persisted themes.
	Themes []domain.Theme

	// Err is set when this project failed inside AnalyzeAll.
	Err error
}
