package postgres

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
		clause := fmt.Sprintf("(question ILIKE %s OR answer ILIKE %s OR keywords ILIKE %s)",
			placeholder(len(args)+1), placeholder(len(args)+2), placeholder(len(args)+3))
		where = append(where, clause)
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
		SET question = $1, answer = $2, keywords = $3, enabled = $4, updated_ts = $5
		WHERE id = $6
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
	if _, err := d.db.ExecContext(ctx, `DELETE FROM faq WHERE id = $1`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete faq")
	}
	return nil
}
