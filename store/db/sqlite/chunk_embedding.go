package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

// SQLite does not support vector storage (no pgvector equivalent). The
// document retriever degrades to keyword search when these methods error.

// UpsertChunkEmbedding is NOT supported for SQLite.
func (*DB) UpsertChunkEmbedding(context.Context, *store.ChunkEmbedding) (*store.ChunkEmbedding, error) {
	return nil, errors.New("chunk embedding (vector storage) requires PostgreSQL with pgvector extension")
}

// ListChunkEmbeddings is NOT supported for SQLite.
func (*DB) ListChunkEmbeddings(context.Context, *store.FindChunkEmbedding) ([]*store.ChunkEmbedding, error) {
	return nil, errors.New("chunk embedding (vector storage) requires PostgreSQL with pgvector extension")
}

// DeleteChunkEmbedding returns nil so cascade deletes keep working.
func (*DB) DeleteChunkEmbedding(context.Context, int32) error {
	return nil
}

// VectorSearchChunks is NOT supported for SQLite.
func (*DB) VectorSearchChunks(context.Context, *store.VectorSearchOptions) ([]*store.ChunkWithScore, error) {
	return nil, errors.New("vector search requires PostgreSQL with pgvector extension")
}

// FindChunksWithoutEmbedding is NOT supported for SQLite.
func (*DB) FindChunksWithoutEmbedding(context.Context, *store.FindChunksWithoutEmbedding) ([]*store.DocumentChunk, error) {
	return nil, errors.New("chunk embedding features require PostgreSQL with pgvector extension")
}
