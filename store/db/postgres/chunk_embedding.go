package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

// UpsertChunkEmbedding inserts or updates a chunk embedding.
func (d *DB) UpsertChunkEmbedding(ctx context.Context, embedding *store.ChunkEmbedding) (*store.ChunkEmbedding, error) {
	stmt := `
		INSERT INTO chunk_embedding (chunk_id, embedding, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (chunk_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`

	vector := pgvector.NewVector(embedding.Embedding)
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.ChunkID,
		vector,
		embedding.Model,
		embedding.CreatedTs,
		embedding.UpdatedTs,
	).Scan(&embedding.ID, &embedding.CreatedTs, &embedding.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert chunk embedding")
	}

	return embedding, nil
}

// ListChunkEmbeddings lists chunk embeddings.
func (d *DB) ListChunkEmbeddings(ctx context.Context, find *store.FindChunkEmbedding) ([]*store.ChunkEmbedding, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ChunkID != nil {
		where, args = append(where, "chunk_id = "+placeholder(len(args)+1)), append(args, *find.ChunkID)
	}
	if find.Model != nil {
		where, args = append(where, "model = "+placeholder(len(args)+1)), append(args, *find.Model)
	}

	query := `
		SELECT id, chunk_id, embedding, model, created_ts, updated_ts
		FROM chunk_embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chunk embeddings")
	}
	defer rows.Close()

	list := []*store.ChunkEmbedding{}
	for rows.Next() {
		var embedding store.ChunkEmbedding
		var vector pgvector.Vector
		if err := rows.Scan(
			&embedding.ID,
			&embedding.ChunkID,
			&vector,
			&embedding.Model,
			&embedding.CreatedTs,
			&embedding.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan chunk embedding")
		}
		embedding.Embedding = vector.Slice()
		list = append(list, &embedding)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteChunkEmbedding deletes the embeddings of a chunk.
func (d *DB) DeleteChunkEmbedding(ctx context.Context, chunkID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM chunk_embedding WHERE chunk_id = $1`, chunkID); err != nil {
		return errors.Wrap(err, "failed to delete chunk embedding")
	}
	return nil
}

// VectorSearchChunks performs vector similarity search using pgvector.
// The <=> operator computes cosine distance (1 - cosine_similarity), so
// ordering by distance ASC returns the most similar chunks first. Rows below
// MinSimilarity are filtered in SQL; the caller still distinguishes "no rows"
// from "rows with near-zero similarity" for its fallback decision.
func (d *DB) VectorSearchChunks(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ChunkWithScore, error) {
	if len(opts.DocumentIDs) == 0 {
		return []*store.ChunkWithScore{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	vector := pgvector.NewVector(opts.Vector)
	args := []any{vector}

	docList := make([]string, 0, len(opts.DocumentIDs))
	for _, id := range opts.DocumentIDs {
		args = append(args, id)
		docList = append(docList, placeholder(len(args)))
	}

	args = append(args, opts.Model)
	modelPlaceholder := placeholder(len(args))
	args = append(args, opts.MinSimilarity)
	minSimPlaceholder := placeholder(len(args))
	args = append(args, limit)
	limitPlaceholder := placeholder(len(args))

	query := `
		SELECT
			c.id, c.document_id, c.chunk_index, c.content, c.heading, c.created_ts,
			dcm.id, dcm.uid, dcm.assistant_id, dcm.knowledge_file_id, dcm.title, dcm.status, dcm.created_ts, dcm.updated_ts,
			1 - (e.embedding <=> $1) AS score
		FROM document_chunk c
		INNER JOIN chunk_embedding e ON c.id = e.chunk_id
		INNER JOIN document dcm ON c.document_id = dcm.id
		WHERE c.document_id IN (` + strings.Join(docList, ", ") + `)
			AND e.model = ` + modelPlaceholder + `
			AND 1 - (e.embedding <=> $1) >= ` + minSimPlaceholder + `
		ORDER BY e.embedding <=> $1
		LIMIT ` + limitPlaceholder

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search chunks")
	}
	defer rows.Close()

	results := []*store.ChunkWithScore{}
	for rows.Next() {
		var result store.ChunkWithScore
		var chunk store.DocumentChunk
		var document store.Document
		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&chunk.Heading,
			&chunk.CreatedTs,
			&document.ID,
			&document.UID,
			&document.AssistantID,
			&document.KnowledgeFileID,
			&document.Title,
			&document.Status,
			&document.CreatedTs,
			&document.UpdatedTs,
			&result.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		result.Chunk = &chunk
		result.Document = &document
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindChunksWithoutEmbedding finds chunks that don't have embeddings for the
// specified model, newest documents first.
func (d *DB) FindChunksWithoutEmbedding(ctx context.Context, find *store.FindChunksWithoutEmbedding) ([]*store.DocumentChunk, error) {
	limit := find.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT c.id, c.document_id, c.chunk_index, c.content, c.heading, c.created_ts
		FROM document_chunk c
		LEFT JOIN chunk_embedding e ON c.id = e.chunk_id AND e.model = $1
		WHERE e.id IS NULL
			AND LENGTH(c.content) > 0
		ORDER BY c.created_ts DESC
		LIMIT $2
	`

	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find chunks without embedding")
	}
	defer rows.Close()

	list := []*store.DocumentChunk{}
	for rows.Next() {
		var chunk store.DocumentChunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.ChunkIndex,
			&chunk.Content,
			&chunk.Heading,
			&chunk.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan chunk")
		}
		list = append(list, &chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
