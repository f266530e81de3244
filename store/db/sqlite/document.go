package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

func (d *DB) CreateDocument(ctx context.Context, create *store.Document) (*store.Document, error) {
	stmt := `
		INSERT INTO document (uid, assistant_id, knowledge_file_id, title, status, created_ts, updated_ts)
		VALUES (` + placeholders(7) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.AssistantID,
		create.KnowledgeFileID,
		create.Title,
		create.Status,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create document")
	}
	return create, nil
}

func (d *DB) ListDocuments(ctx context.Context, find *store.FindDocument) ([]*store.Document, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.AssistantID != nil {
		where, args = append(where, "assistant_id = ?"), append(args, *find.AssistantID)
	}
	if len(find.KnowledgeFileIDs) > 0 {
		where = append(where, "knowledge_file_id IN ("+placeholders(len(find.KnowledgeFileIDs))+")")
		for _, id := range find.KnowledgeFileIDs {
			args = append(args, id)
		}
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}

	query := `
		SELECT id, uid, assistant_id, knowledge_file_id, title, status, created_ts, updated_ts
		FROM document
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list documents")
	}
	defer rows.Close()

	list := []*store.Document{}
	for rows.Next() {
		var document store.Document
		if err := rows.Scan(
			&document.ID,
			&document.UID,
			&document.AssistantID,
			&document.KnowledgeFileID,
			&document.Title,
			&document.Status,
			&document.CreatedTs,
			&document.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan document")
		}
		list = append(list, &document)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateDocument(ctx context.Context, update *store.Document) (*store.Document, error) {
	stmt := `
		UPDATE document
		SET title = ?, status = ?, updated_ts = ?
		WHERE id = ?
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		update.Title,
		update.Status,
		update.UpdatedTs,
		update.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update document")
	}
	return update, nil
}

func (d *DB) DeleteDocument(ctx context.Context, delete *store.DeleteDocument) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM document WHERE id = ?`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete document")
	}
	return nil
}

func (d *DB) CreateDocumentChunk(ctx context.Context, create *store.DocumentChunk) (*store.DocumentChunk, error) {
	stmt := `
		INSERT INTO document_chunk (document_id, chunk_index, content, heading, created_ts)
		VALUES (` + placeholders(5) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.DocumentID,
		create.ChunkIndex,
		create.Content,
		create.Heading,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create document chunk")
	}
	return create, nil
}

func (d *DB) ListDocumentChunks(ctx context.Context, find *store.FindDocumentChunk) ([]*store.DocumentChunk, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if len(find.DocumentIDs) > 0 {
		where = append(where, "document_id IN ("+placeholders(len(find.DocumentIDs))+")")
		for _, id := range find.DocumentIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT id, document_id, chunk_index, content, heading, created_ts
		FROM document_chunk
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY document_id ASC, chunk_index ASC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list document chunks")
	}
	defer rows.Close()

	return scanChunks(rows)
}

// KeywordSearchChunks OR-matches keywords case-insensitively against chunk
// content within the document allow-list. Scoring happens in the retriever;
// the store only filters.
func (d *DB) KeywordSearchChunks(ctx context.Context, opts *store.KeywordSearchOptions) ([]*store.DocumentChunk, error) {
	if len(opts.DocumentIDs) == 0 || len(opts.Keywords) == 0 {
		return []*store.DocumentChunk{}, nil
	}

	args := []any{}
	docList := placeholders(len(opts.DocumentIDs))
	for _, id := range opts.DocumentIDs {
		args = append(args, id)
	}

	matches := make([]string, 0, len(opts.Keywords))
	for _, keyword := range opts.Keywords {
		matches = append(matches, "LOWER(content) LIKE ?")
		args = append(args, "%"+strings.ToLower(keyword)+"%")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, document_id, chunk_index, content, heading, created_ts
		FROM document_chunk
		WHERE document_id IN (` + docList + `)
			AND (` + strings.Join(matches, " OR ") + `)
		ORDER BY document_id ASC, chunk_index ASC
	` + fmt.Sprintf(" LIMIT %d", limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to keyword search chunks")
	}
	defer rows.Close()

	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]*store.DocumentChunk, error) {
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
			return nil, errors.Wrap(err, "failed to scan document chunk")
		}
		list = append(list, &chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
