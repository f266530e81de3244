package store

import "context"

// ChunkEmbedding represents the vector embedding of a document chunk.
type ChunkEmbedding struct {
	ID        int32
	ChunkID   int32
	Embedding []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

// FindChunkEmbedding is the find condition for chunk embeddings.
type FindChunkEmbedding struct {
	ChunkID *int32
	Model   *string
}

// ChunkWithScore represents a vector search result with similarity score.
type ChunkWithScore struct {
	Chunk    *DocumentChunk
	Document *Document
	Score    float32 // cosine similarity in [0,1], higher is more similar
}

// VectorSearchOptions represents the options for vector chunk search.
type VectorSearchOptions struct {
	DocumentIDs   []int32 // allow-list; empty means no scope, callers must not pass empty
	Vector        []float32
	Limit         int
	MinSimilarity float32
	Model         string
}

// FindChunksWithoutEmbedding finds chunks missing an embedding for a model.
type FindChunksWithoutEmbedding struct {
	Model string
	Limit int
}

func (s *Store) UpsertChunkEmbedding(ctx context.Context, embedding *ChunkEmbedding) (*ChunkEmbedding, error) {
	return s.driver.UpsertChunkEmbedding(ctx, embedding)
}

func (s *Store) ListChunkEmbeddings(ctx context.Context, find *FindChunkEmbedding) ([]*ChunkEmbedding, error) {
	return s.driver.ListChunkEmbeddings(ctx, find)
}

func (s *Store) DeleteChunkEmbedding(ctx context.Context, chunkID int32) error {
	return s.driver.DeleteChunkEmbedding(ctx, chunkID)
}

// VectorSearchChunks performs vector similarity search restricted to the
// given document allow-list. An empty allow-list short-circuits to no results
// so a tenant without completed documents never queries unscoped.
func (s *Store) VectorSearchChunks(ctx context.Context, opts *VectorSearchOptions) ([]*ChunkWithScore, error) {
	if len(opts.DocumentIDs) == 0 {
		return []*ChunkWithScore{}, nil
	}
	return s.driver.VectorSearchChunks(ctx, opts)
}

func (s *Store) FindChunksWithoutEmbedding(ctx context.Context, find *FindChunksWithoutEmbedding) ([]*DocumentChunk, error) {
	return s.driver.FindChunksWithoutEmbedding(ctx, find)
}
