package embedding

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/store"
)

// runnerDriver fakes the two store paths the runner exercises.
type runnerDriver struct {
	store.Driver

	pending  []*store.DocumentChunk
	upserted []*store.ChunkEmbedding
}

func (d *runnerDriver) FindChunksWithoutEmbedding(context.Context, *store.FindChunksWithoutEmbedding) ([]*store.DocumentChunk, error) {
	return d.pending, nil
}

func (d *runnerDriver) UpsertChunkEmbedding(_ context.Context, embedding *store.ChunkEmbedding) (*store.ChunkEmbedding, error) {
	d.upserted = append(d.upserted, embedding)
	return embedding, nil
}

func (*runnerDriver) GetDB() *sql.DB { return nil }
func (*runnerDriver) Close() error   { return nil }

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("not used by the runner")
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 2, 3, 4}
	}
	return vectors, nil
}

func (*stubEmbedder) Dimensions() int { return 4 }

func newRunnerStore(t *testing.T, driver *runnerDriver) *store.Store {
	t.Helper()
	s := store.New(driver, &profile.Profile{Mode: "dev", Driver: "postgres"})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunnerEmbedsPendingChunks(t *testing.T) {
	driver := &runnerDriver{
		pending: []*store.DocumentChunk{
			{ID: 1, DocumentID: 10, Content: "levering binnen 2 dagen", Heading: "Levering"},
			{ID: 2, DocumentID: 10, Content: "retourneren binnen 30 dagen"},
		},
	}
	embedder := &stubEmbedder{}
	runner := NewRunner(newRunnerStore(t, driver), embedder, "test-model")

	runner.RunOnce(context.Background())

	require.Len(t, driver.upserted, 2)
	assert.Equal(t, int32(1), driver.upserted[0].ChunkID)
	assert.Equal(t, "test-model", driver.upserted[0].Model)
	assert.Equal(t, []float32{1, 2, 3, 4}, driver.upserted[0].Embedding)
}

func TestRunnerSkipsUpsertsOnProviderFailure(t *testing.T) {
	driver := &runnerDriver{
		pending: []*store.DocumentChunk{{ID: 1, DocumentID: 10, Content: "tekst"}},
	}
	embedder := &stubEmbedder{err: errors.New("provider exhausted")}
	runner := NewRunner(newRunnerStore(t, driver), embedder, "test-model")

	runner.RunOnce(context.Background())

	assert.Empty(t, driver.upserted)
}

func TestRunnerNoPendingChunksNoCalls(t *testing.T) {
	driver := &runnerDriver{}
	embedder := &stubEmbedder{}
	runner := NewRunner(newRunnerStore(t, driver), embedder, "test-model")

	runner.RunOnce(context.Background())

	assert.Equal(t, 0, embedder.calls)
	assert.Empty(t, driver.upserted)
}
