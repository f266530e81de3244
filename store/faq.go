package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

// FAQ represents a question/answer pair maintained by a tenant.
type FAQ struct {
	ID          int32
	UID         string
	AssistantID string
	Question    string
	Answer      string
	// Keywords are editor-curated match terms, stored comma separated.
	Keywords  string
	Enabled   bool
	CreatedTs int64
	UpdatedTs int64
}

// FindFAQ is the find condition for FAQs.
type FindFAQ struct {
	ID           *int32
	UID          *string
	AssistantID  *string
	Enabled      *bool
	ContainsText *string // case-insensitive containment over question/answer/keywords
	Limit        *int
}

// DeleteFAQ is the delete condition for FAQs.
type DeleteFAQ struct {
	ID int32
}

func (s *Store) CreateFAQ(ctx context.Context, create *FAQ) (*FAQ, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateFAQ(ctx, create)
}

func (s *Store) ListFAQs(ctx context.Context, find *FindFAQ) ([]*FAQ, error) {
	return s.driver.ListFAQs(ctx, find)
}

func (s *Store) UpdateFAQ(ctx context.Context, update *FAQ) (*FAQ, error) {
	return s.driver.UpdateFAQ(ctx, update)
}

func (s *Store) DeleteFAQ(ctx context.Context, delete *DeleteFAQ) error {
	return s.driver.DeleteFAQ(ctx, delete)
}
