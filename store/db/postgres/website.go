package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/store"
)

func (d *DB) CreateWebsite(ctx context.Context, create *store.Website) (*store.Website, error) {
	stmt := `
		INSERT INTO website (uid, assistant_id, url, title, description, enabled, last_crawled_ts, created_ts, updated_ts)
		VALUES (` + placeholders(9) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.AssistantID,
		create.URL,
		create.Title,
		create.Description,
		create.Enabled,
		create.LastCrawledTs,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create website")
	}
	return create, nil
}

func (d *DB) ListWebsites(ctx context.Context, find *store.FindWebsite) ([]*store.Website, error) {
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
		clause := fmt.Sprintf("(url ILIKE %s OR title ILIKE %s OR description ILIKE %s)",
			placeholder(len(args)+1), placeholder(len(args)+2), placeholder(len(args)+3))
		where = append(where, clause)
		args = append(args, pattern, pattern, pattern)
	}

	query := `
		SELECT id, uid, assistant_id, url, title, description, enabled, last_crawled_ts, created_ts, updated_ts
		FROM website
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list websites")
	}
	defer rows.Close()

	list := []*store.Website{}
	for rows.Next() {
		var website store.Website
		if err := rows.Scan(
			&website.ID,
			&website.UID,
			&website.AssistantID,
			&website.URL,
			&website.Title,
			&website.Description,
			&website.Enabled,
			&website.LastCrawledTs,
			&website.CreatedTs,
			&website.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan website")
		}
		list = append(list, &website)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateWebsite(ctx context.Context, update *store.Website) (*store.Website, error) {
	stmt := `
		UPDATE website
		SET url = $1, title = $2, description = $3, enabled = $4, last_crawled_ts = $5, updated_ts = $6
		WHERE id = $7
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		update.URL,
		update.Title,
		update.Description,
		update.Enabled,
		update.LastCrawledTs,
		update.UpdatedTs,
		update.ID,
	); err != nil {
		return nil, errors.Wrap(err, "failed to update website")
	}
	return update, nil
}

func (d *DB) DeleteWebsite(ctx context.Context, delete *store.DeleteWebsite) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM website WHERE id = $1`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete website")
	}
	return nil
}

func (d *DB) CreateWebsitePage(ctx context.Context, create *store.WebsitePage) (*store.WebsitePage, error) {
	stmt := `
		INSERT INTO website_page (website_id, assistant_id, url, title, content, created_ts, updated_ts)
		VALUES (` + placeholders(7) + `)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.WebsiteID,
		create.AssistantID,
		create.URL,
		create.Title,
		create.Content,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create website page")
	}
	return create, nil
}

func (d *DB) ListWebsitePages(ctx context.Context, find *store.FindWebsitePage) ([]*store.WebsitePage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.WebsiteID != nil {
		where, args = append(where, "website_id = "+placeholder(len(args)+1)), append(args, *find.WebsiteID)
	}
	if find.AssistantID != nil {
		where, args = append(where, "assistant_id = "+placeholder(len(args)+1)), append(args, *find.AssistantID)
	}
	if find.ContainsText != nil {
		pattern := "%" + *find.ContainsText + "%"
		clause := fmt.Sprintf("(url ILIKE %s OR title ILIKE %s OR content ILIKE %s)",
			placeholder(len(args)+1), placeholder(len(args)+2), placeholder(len(args)+3))
		where = append(where, clause)
		args = append(args, pattern, pattern, pattern)
	}

	query := `
		SELECT id, website_id, assistant_id, url, title, content, created_ts, updated_ts
		FROM website_page
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC, id DESC
	`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list website pages")
	}
	defer rows.Close()

	list := []*store.WebsitePage{}
	for rows.Next() {
		var page store.WebsitePage
		if err := rows.Scan(
			&page.ID,
			&page.WebsiteID,
			&page.AssistantID,
			&page.URL,
			&page.Title,
			&page.Content,
			&page.CreatedTs,
			&page.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan website page")
		}
		list = append(list, &page)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
