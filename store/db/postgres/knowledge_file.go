package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

func (d *DB) CreateKnowledgeFile(ctx context.Context, create *store.KnowledgeFile) (*store.KnowledgeFile, error) {
	stmt := `
		INSERT INTO knowledge_file (uid, assistant_id, name, description, enabled, created_ts, updated_ts)
		VALUES (` + placeholders(7) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.AssistantID,
		create.Name,
		create.Description,
		create.Enabled,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create knowledge file")
	}
	return create, nil
}

func (d *DB) ListKnowledgeFiles(ctx context.Context, find *store.FindKnowledgeFile) ([]*store.KnowledgeFile, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.AssistantID != nil {
		where, args = append(where, "assistant_id = "+placeholder(len(args)+1)), append(args, *find.AssistantID)
	}
	if find.Enabled != nil {
		where, args = append(where, "enabled = "+placeholder(len(args)+1)), append(args, *find.Enabled)
	}
	if find.ContainsText != nil {
		pattern := "%" + *find.ContainsText + "%"
		clause := fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)",
			placeholder(len(args)+1), placeholder(len(args)+2))
		where = append(where, clause)
		args = append(args, pattern, pattern)
	}

	query := `
		SELECT id, uid, assistant_id, name, description, enabled, created_ts, updated_ts
		FROM knowledge_file
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list knowledge files")
	}
	defer rows.Close()

	list := []*store.KnowledgeFile{}
	for rows.Next() {
		var file store.KnowledgeFile
		if err := rows.Scan(
			&file.ID,
			&file.UID,
			&file.AssistantID,
			&file.Name,
			&file.Description,
			&file.Enabled,
			&file.CreatedTs,
			&file.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan knowledge file")
		}
		list = append(list, &file)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateKnowledgeFile(ctx context.Context, update *store.KnowledgeFile) (*store.KnowledgeFile, error) {
	stmt := `
		UPDATE knowledge_file
		SET name = $1, description = $2, enabled = $3, updated_ts = $4
		WHERE id = $5
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		update.Name,
		update.Description,
		update.Enabled,
		update.UpdatedTs,
		update.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update knowledge file")
	}
	return update, nil
}

func (d *DB) DeleteKnowledgeFile(ctx context.Context, delete *store.DeleteKnowledgeFile) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM knowledge_file WHERE id = $1`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete knowledge file")
	}
	return nil
}
