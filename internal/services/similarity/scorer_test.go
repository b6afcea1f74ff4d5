package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKUGenAI/legal-chatbot/internal/common"
	"github.com/HKUGenAI/legal-chatbot/internal/interfaces"
)

// fakeEmbedder returns canned vectors keyed by input text
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "", nil
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func (f *fakeEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                          { return nil }

func TestCosineIdenticalVectors(t *testing.T) {
	score, err := Cosine([]float32{1, 2, 3}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosineOrthogonalVectors(t *testing.T) {
	score, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestCosineOppositeVectorsClampToZero(t *testing.T) {
	score, err := Cosine([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestCosineKnownAngle(t *testing.T) {
	// 45 degrees: cos = 1/sqrt(2)
	score, err := Cosine([]float32{1, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.7071, score, 0.0001)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestCosineZeroVector(t *testing.T) {
	_, err := Cosine([]float32{0, 0}, []float32{1, 2})
	assert.Error(t, err)
}

func TestScorerScoresTexts(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"answer one": {1, 2, 3},
		"answer two": {1, 2, 3.1},
	}}
	scorer := NewScorer(embedder, common.GetLogger())

	score, err := scorer.Score(context.Background(), "answer one", "answer two")
	require.NoError(t, err)
	assert.Greater(t, score, 0.99)
}

func TestScorerRejectsEmptyText(t *testing.T) {
	scorer := NewScorer(&fakeEmbedder{}, common.GetLogger())

	_, err := scorer.Score(context.Background(), "", "something")
	assert.Error(t, err)
}
