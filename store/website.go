package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

// Website represents a crawled site registered by a tenant.
type Website struct {
	ID            int32
	UID           string
	AssistantID   string
	URL           string
	Title         string
	Description   string
	Enabled       bool
	LastCrawledTs int64
	CreatedTs     int64
	UpdatedTs     int64
}

// FindWebsite is the find condition for websites.
type FindWebsite struct {
	ID           *int32
	UID          *string
	AssistantID  *string
	Enabled      *bool
	ContainsText *string // containment over url/title/description
	Limit        *int
}

// DeleteWebsite is the delete condition for websites.
type DeleteWebsite struct {
	ID int32
}

// WebsitePage represents a single crawled page of a website.
type WebsitePage struct {
	ID          int32
	WebsiteID   int32
	AssistantID string
	URL         string
	Title       string
	Content     string
	CreatedTs   int64
	UpdatedTs   int64
}

// FindWebsitePage is the find condition for website pages.
type FindWebsitePage struct {
	ID           *int32
	WebsiteID    *int32
	AssistantID  *string
	ContainsText *string // containment over url/title/content
	Limit        *int
}

func (s *Store) CreateWebsite(ctx context.Context, create *Website) (*Website, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateWebsite(ctx, create)
}

func (s *Store) ListWebsites(ctx context.Context, find *FindWebsite) ([]*Website, error) {
	return s.driver.ListWebsites(ctx, find)
}

func (s *Store) UpdateWebsite(ctx context.Context, update *Website) (*Website, error) {
	return s.driver.UpdateWebsite(ctx, update)
}

func (s *Store) DeleteWebsite(ctx context.Context, delete *DeleteWebsite) error {
	return s.driver.DeleteWebsite(ctx, delete)
}

func (s *Store) CreateWebsitePage(ctx context.Context, create *WebsitePage) (*WebsitePage, error) {
	return s.driver.CreateWebsitePage(ctx, create)
}

func (s *Store) ListWebsitePages(ctx context.Context, find *FindWebsitePage) ([]*WebsitePage, error) {
	return s.driver.ListWebsitePages(ctx, find)
}
