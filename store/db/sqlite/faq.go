package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

func (d *DB) CreateFAQ(ctx context.Context, create *store.FAQ) (*store.FAQ, error) {
	stmt := `
		INSERT INTO faq (uid, assistant_id, question, answer, keywords, enabled, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.AssistantID,
		create.Question,
		create.Answer,
		create.Keywords,
		create.Enabled,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create faq")
	}
	return create, nil
}

func (d *DB) ListFAQs(ctx context.Context, find *store.FindFAQ) ([]*store.FAQ, error) {
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
	if find.Enabled != nil {
		where, args = append(where, "enabled = ?"), append(args, *find.Enabled)
	}
	if find.ContainsText != nil {
		pattern := "%" + strings.ToLower(*find.ContainsText) + "%"
		where = append(where, "(LOWER(question) LIKE ? OR LOWER(answer) LIKE ? OR LOWER(keywords) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := `
		SELECT id, uid, assistant_id, question, answer, keywords, enabled, created_ts, updated_ts
		FROM faq
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list faqs")
	}
	defer rows.Close()

	list := []*store.FAQ{}
	for rows.Next() {
		var faq store.FAQ
		if err := rows.Scan(
			&faq.ID,
			&faq.UID,
			&faq.AssistantID,
			&faq.Question,
			&faq.Answer,
			&faq.Keywords,
			&faq.Enabled,
			&faq.CreatedTs,
			&faq.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan faq")
		}
		list = append(list, &faq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateFAQ(ctx context.Context, update *store.FAQ) (*store.FAQ, error) {
	stmt := `
		UPDATE faq
		SET question = ?, answer = ?, keywords = ?, enabled = ?, updated_ts = ?
		WHERE id = ?
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		update.Question,
		update.Answer,
		update.Keywords,
		update.Enabled,
		update.UpdatedTs,
		update.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update faq")
	}
	return update, nil
}

func (d *DB) DeleteFAQ(ctx context.Context, delete *store.DeleteFAQ) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM faq WHERE id = ?`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete faq")
	}
	return nil
}
