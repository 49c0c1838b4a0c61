package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

func docsOf(texts ...string) []Document {
	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: fmt.Sprintf("s%02d", i), Text: text}
	}
	return docs
}

// topicCorpus has three disjoint vocabularies, three documents each.
func topicCorpus() []Document {
	return []Document{
		{ID: "deploy-1", Text: "deployment pipeline rollback release"},
		{ID: "deploy-2", Text: "release pipeline rollback deployment"},
		{ID: "deploy-3", Text: "rollback release deployment pipeline"},
		{ID: "budget-1", Text: "budget forecast quarter spending"},
		{ID: "budget-2", Text: "quarter budget spending forecast"},
		{ID: "budget-3", Text: "forecast spending budget quarter"},
		{ID: "hiring-1", Text: "hiring interview candidate onboarding"},
		{ID: "hiring-2", Text: "candidate onboarding hiring interview"},
		{ID: "hiring-3", Text: "interview candidate hiring onboarding"},
	}
}

func TestEngine_StrategyFor(t *testing.T) {
	e := NewEngine(WithK(3))

	assert.Equal(t, domain.StrategyNone, e.StrategyFor(0))
	assert.Equal(t, domain.StrategyCooccurrence, e.StrategyFor(1))
	assert.Equal(t, domain.StrategyCooccurrence, e.StrategyFor(5))
	assert.Equal(t, domain.StrategyKMeans, e.StrategyFor(6))
	assert.Equal(t, domain.StrategyKMeans, e.StrategyFor(100))
}

func TestEngine_EmptyInput(t *testing.T) {
	res, err := NewEngine().Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyNone, res.Strategy)
	assert.Empty(t, res.Drafts)
}

func TestEngine_ThresholdSwitch(t *testing.T) {
	e := NewEngine(WithK(3), WithMinSupport(1))
	corpus := topicCorpus()

	res, err := e.Run(context.Background(), corpus[:5])
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyCooccurrence, res.Strategy)

	res, err = e.Run(context.Background(), corpus[:6])
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyKMeans, res.Strategy)
}

func TestEngine_KMeansGroupsTopics(t *testing.T) {
	e := NewEngine(WithK(3), WithMinSupport(3))

	res, err := e.Run(context.Background(), topicCorpus())
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyKMeans, res.Strategy)
	assert.False(t, res.Relaxed)
	require.Len(t, res.Drafts, 3)

	for _, d := range res.Drafts {
		require.Len(t, d.SegmentIDs, 3)
		assert.Equal(t, len(d.SegmentIDs), d.SupportCount)
		prefix := strings.SplitN(d.SegmentIDs[0], "-", 2)[0]
		for _, id := range d.SegmentIDs {
			assert.True(t, strings.HasPrefix(id, prefix+"-"), "cluster mixes %v", d.SegmentIDs)
		}
		assert.NotEmpty(t, d.Keywords)
		assert.LessOrEqual(t, len(d.Keywords), maxKeywords)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	corpus := topicCorpus()
	corpus = append(corpus,
		Document{ID: "mixed-1", Text: "budget for hiring candidate"},
		Document{ID: "mixed-2", Text: "release deployment budget"},
	)

	first, err := NewEngine(WithK(3), WithMinSupport(1)).Run(context.Background(), corpus)
	require.NoError(t, err)
	second, err := NewEngine(WithK(3), WithMinSupport(1)).Run(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_SupportFilter(t *testing.T) {
	res, err := NewEngine(WithK(3), WithMinSupport(4)).Run(context.Background(), topicCorpus())
	require.NoError(t, err)
	assert.Empty(t, res.Drafts)

	for _, support := range []int{1, 2, 3} {
		res, err := NewEngine(WithK(3), WithMinSupport(support)).Run(context.Background(), topicCorpus())
		require.NoError(t, err)
		for _, d := range res.Drafts {
			assert.GreaterOrEqual(t, d.SupportCount, support)
		}
	}
}

func TestEngine_RelaxedRetry(t *testing.T) {
	docs := docsOf(
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
	)

	res, err := NewEngine(WithK(3), WithMinSupport(1)).Run(context.Background(), docs)
	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.Equal(t, domain.StrategyKMeans, res.Strategy)

	total := 0
	for _, d := range res.Drafts {
		total += d.SupportCount
	}
	assert.Equal(t, len(docs), total)
}

func TestEngine_DegenerateVectorization(t *testing.T) {
	docs := docsOf("the", "and of", "a b c", "is it", "to be", "on the")

	_, err := NewEngine(WithK(3)).Run(context.Background(), docs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDegenerateVectorization)

	var ae *domain.AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "vectorize", ae.Stage)
}

func TestEngine_FewerDocsThanK(t *testing.T) {
	// Below 2K the co-occurrence path runs, so force the cluster path directly.
	e := NewEngine(WithK(3))
	drafts, relaxed, err := e.cluster(context.Background(), docsOf("alpha beta", "alpha beta"))
	require.NoError(t, err)
	assert.False(t, relaxed)
	assert.Nil(t, drafts)
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(WithK(3)).Run(ctx, topicCorpus())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var ae *domain.AnalysisError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "cluster", ae.Stage)
}

func TestTopTerms(t *testing.T) {
	terms := []string{"a", "b", "c", "d"}
	weights := []float64{0.1, 0.5, 0, 0.5}

	assert.Equal(t, []string{"b", "d", "a"}, topTerms(weights, terms, 10))
	assert.Equal(t, []string{"b"}, topTerms(weights, terms, 1))
	assert.Empty(t, topTerms([]float64{0, 0}, []string{"x", "y"}, 3))
}
