package extractors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

// mockExtractor returns predefined records.
type mockExtractor struct {
	name    string
	records []domain.Extraction
	err     error
	calls   int
}

func (m *mockExtractor) Name() string                { return m.name }
func (m *mockExtractor) Kind() domain.ExtractionKind { return domain.KindStep }

func (m *mockExtractor) Extract(_ context.Context, _ string, _ domain.Provenance) ([]domain.Extraction, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Len())

	p.Add(&mockExtractor{name: "test"})
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_Extract_EmptyPipeline(t *testing.T) {
	records, err := NewPipeline().Extract(context.Background(), "text", testProvenance())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestPipeline_Extract_ConcatenatesInOrder(t *testing.T) {
	first := &domain.Step{Description: "first"}
	second := &domain.Step{Description: "second"}
	p := NewPipeline(
		&mockExtractor{name: "a", records: []domain.Extraction{first}},
		&mockExtractor{name: "b", records: []domain.Extraction{second}},
	)

	records, err := p.Extract(context.Background(), "text", testProvenance())
	require.NoError(t, err)
	assert.Equal(t, []domain.Extraction{first, second}, records)
}

func TestPipeline_Extract_ErrorStops(t *testing.T) {
	after := &mockExtractor{name: "after"}
	p := NewPipeline(&mockExtractor{name: "broken", err: errors.New("boom")}, after)

	_, err := p.Extract(context.Background(), "text", testProvenance())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extractor broken")
	assert.Equal(t, 0, after.calls)
}

func TestPipeline_Extract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockExtractor{name: "a"}
	_, err := NewPipeline(m).Extract(ctx, "text", testProvenance())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.calls)
}

func TestDefaultPipeline_AllKinds(t *testing.T) {
	p := NewDefaultPipeline()
	require.Equal(t, len(DefaultOrder), p.Len())

	text := strings.Join([]string{
		"1. Deploy the staging build",
		"Runway refers to months of cash left",
		"Q: When is the launch?",
		"A: Early March after QA.",
		"Decision: Freeze the hiring budget",
		"Action: Alice will send the deck",
	}, "\n")

	records, err := p.Extract(context.Background(), text, testProvenance())
	require.NoError(t, err)

	kinds := make(map[domain.ExtractionKind]int)
	for _, r := range records {
		kinds[r.Kind()]++
	}
	for _, k := range domain.ExtractionKinds {
		assert.GreaterOrEqual(t, kinds[k], 1, "kind %s", k)
	}
}

func TestNewPipelineFromNames(t *testing.T) {
	p, err := NewPipelineFromNames([]string{ActionsName, StepsName})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	records, err := p.Extract(context.Background(), "Decision: Freeze the hiring budget\nAction: Alice will send the deck", testProvenance())
	require.NoError(t, err)
	for _, r := range records {
		assert.NotEqual(t, domain.KindDecision, r.Kind())
	}

	all, err := NewPipelineFromNames(nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultOrder), all.Len())

	_, err = NewPipelineFromNames([]string{"summaries"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
