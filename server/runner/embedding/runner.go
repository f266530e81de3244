// Package embedding implements the background runner that keeps document
// chunks indexed: it finds chunks without a stored embedding, embeds them in
// batches and upserts the vectors.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chatvise/chatvise/plugin/ai"
	"github.com/chatvise/chatvise/store"
)

type Runner struct {
	store            *store.Store
	embeddingService ai.EmbeddingService
	interval         time.Duration
	batchSize        int
	model            string
}

// NewRunner creates a chunk embedding runner.
func NewRunner(store *store.Store, embeddingService ai.EmbeddingService, model string) *Runner {
	return &Runner{
		store:            store,
		embeddingService: embeddingService,
		interval:         2 * time.Minute,
		batchSize:        16,
		model:            model,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup
	r.processPendingChunks(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processPendingChunks(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes pending chunks once (for manual trigger and tests).
func (r *Runner) RunOnce(ctx context.Context) {
	r.processPendingChunks(ctx)
}

func (r *Runner) processPendingChunks(ctx context.Context) {
	chunks, err := r.store.FindChunksWithoutEmbedding(ctx, &store.FindChunksWithoutEmbedding{
		Model: r.model,
		Limit: r.batchSize * 20, // fetch more, process in small batches
	})
	if err != nil {
		slog.Error("failed to find chunks without embedding", "error", err)
		return
	}
	if len(chunks) == 0 {
		return
	}

	slog.Info("processing chunks for embedding", "count", len(chunks))

	for i := 0; i < len(chunks); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("embedding processing cancelled", "processed", i, "total", len(chunks))
			return
		default:
		}

		end := i + r.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		if err := r.processBatch(ctx, batch); err != nil {
			slog.Error("failed to process embedding batch", "error", err)
			continue
		}
		slog.Info("embedding batch processed", "count", len(batch), "progress", fmt.Sprintf("%d/%d", end, len(chunks)))
	}
}

// processBatch embeds a batch of chunks and upserts the vectors. Provider
// exhaustion fails the batch rather than writing zero vectors; the next tick
// retries the same chunks.
func (r *Runner) processBatch(ctx context.Context, chunks []*store.DocumentChunk) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		text := chunk.Content
		if chunk.Heading != "" {
			// Prefixing the heading gives section context to the vector.
			text = chunk.Heading + "\n" + text
		}
		texts[i] = text
	}

	vectors, err := r.embeddingService.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		if ai.IsZeroVector(vectors[i]) {
			slog.Warn("skipping zero vector for chunk", "chunk_id", chunk.ID)
			continue
		}
		if _, err := r.store.UpsertChunkEmbedding(ctx, &store.ChunkEmbedding{
			ChunkID:   chunk.ID,
			Embedding: vectors[i],
			Model:     r.model,
		}); err != nil {
			return fmt.Errorf("upsert embedding for chunk %d: %w", chunk.ID, err)
		}
	}
	return nil
}
