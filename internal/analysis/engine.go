package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// maxKeywords is how many centroid terms describe a clustered theme.
const maxKeywords = 10

// Document is one unit of text to analyse.
type Document struct {
	ID   string
	Text string
}

// Result is the outcome of one engine run.
type Result struct {
	// Strategy is the path that produced Drafts.
	Strategy domain.Strategy

	// Drafts are the themes that met the support threshold, in cluster or pair order.
	Drafts []domain.ThemeDraft

	// Relaxed is true when vectorisation needed the relaxed retry.
	Relaxed bool
}

// Engine chooses a strategy and turns documents into theme drafts.
type Engine struct {
	k          int
	minSupport int
	seed       int64
	restarts   int
	vectorizer VectorizerOptions
}

// Option configures the engine.
type Option func(*Engine)

// WithK sets the target cluster count.
func WithK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.k = k
		}
	}
}

// WithMinSupport sets the minimum segments per theme.
func WithMinSupport(s int) Option {
	return func(e *Engine) {
		if s > 0 {
			e.minSupport = s
		}
	}
}

// WithSeed sets the clustering seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithRestarts sets the number of k-means restarts.
func WithRestarts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.restarts = n
		}
	}
}

// WithVectorizer overrides the TF-IDF options.
func WithVectorizer(opts VectorizerOptions) Option {
	return func(e *Engine) {
		e.vectorizer = opts
	}
}

// NewEngine creates an engine with K=6, min support 3 and seed 42 unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		k:          6,
		minSupport: 3,
		seed:       42,
		restarts:   10,
		vectorizer: DefaultVectorizerOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StrategyFor reports which strategy a corpus of n documents uses.
func (e *Engine) StrategyFor(n int) domain.Strategy {
	switch {
	case n == 0:
		return domain.StrategyNone
	case n >= 2*e.k:
		return domain.StrategyKMeans
	default:
		return domain.StrategyCooccurrence
	}
}

// Run analyses docs. Empty input yields an empty result, not an error.
// Failures are returned as *domain.AnalysisError with Stage set.
func (e *Engine) Run(ctx context.Context, docs []Document) (*Result, error) {
	result := &Result{Strategy: e.StrategyFor(len(docs))}

	var drafts []domain.ThemeDraft
	switch result.Strategy {
	case domain.StrategyNone:
		return result, nil
	case domain.StrategyKMeans:
		var err error
		drafts, result.Relaxed, err = e.cluster(ctx, docs)
		if err != nil {
			return nil, err
		}
	default:
		drafts = Cooccurrence(docs, e.minSupport)
	}

	for _, d := range drafts {
		// A centroid with no positive weight has nothing to name the theme by.
		if d.SupportCount >= e.minSupport && len(d.Keywords) > 0 {
			result.Drafts = append(result.Drafts, d)
		}
	}
	return result, nil
}

func (e *Engine) cluster(ctx context.Context, docs []Document) ([]domain.ThemeDraft, bool, error) {
	// More clusters than points: emit nothing rather than shrink K.
	if len(docs) < e.k {
		return nil, false, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	relaxed := false
	matrix, err := Vectorize(texts, e.vectorizer)
	if errors.Is(err, ErrNoFeatures) {
		relaxed = true
		matrix, err = Vectorize(texts, e.vectorizer.Relaxed())
	}
	if err != nil {
		cause := err
		if errors.Is(err, ErrNoFeatures) {
			cause = fmt.Errorf("%w: %v", domain.ErrDegenerateVectorization, err)
		}
		return nil, relaxed, &domain.AnalysisError{Stage: "vectorize", Err: cause}
	}

	opts := DefaultKMeansOptions(e.k)
	opts.Seed = e.seed
	opts.Restarts = e.restarts
	clustering, err := KMeans(ctx, matrix.Rows, opts)
	if err != nil {
		return nil, relaxed, &domain.AnalysisError{Stage: "cluster", Err: err}
	}

	var drafts []domain.ThemeDraft
	for c := 0; c < e.k; c++ {
		var ids []string
		for i, label := range clustering.Labels {
			if label == c {
				ids = append(ids, docs[i].ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		drafts = append(drafts, domain.ThemeDraft{
			Keywords:     topTerms(clustering.Centroids[c], matrix.Terms, maxKeywords),
			SupportCount: len(ids),
			SegmentIDs:   ids,
		})
	}
	return drafts, relaxed, nil
}

// topTerms returns up to n terms with the highest positive weight,
// ties broken alphabetically.
func topTerms(weights []float64, terms []string, n int) []string {
	idx := make([]int, 0, len(weights))
	for j, w := range weights {
		if w > 0 {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return weights[idx[a]] > weights[idx[b]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = terms[j]
	}
	return out
}
