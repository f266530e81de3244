package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

// KnowledgeFile represents an uploaded knowledge source owned by a tenant.
// Documents extracted from the file link back to it via KnowledgeFileID.
type KnowledgeFile struct {
	ID          int32
	UID         string
	AssistantID string
	Name        string
	Description string
	Enabled     bool
	CreatedTs   int64
	UpdatedTs   int64
}

// FindKnowledgeFile is the find condition for knowledge files.
type FindKnowledgeFile struct {
	ID           *int32
	UID          *string
	AssistantID  *string
	Enabled      *bool
	ContainsText *string
	Limit        *int
}

// DeleteKnowledgeFile is the delete condition for knowledge files.
type DeleteKnowledgeFile struct {
	ID int32
}

func (s *Store) CreateKnowledgeFile(ctx context.Context, create *KnowledgeFile) (*KnowledgeFile, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateKnowledgeFile(ctx, create)
}

func (s *Store) ListKnowledgeFiles(ctx context.Context, find *FindKnowledgeFile) ([]*KnowledgeFile, error) {
	return s.driver.ListKnowledgeFiles(ctx, find)
}

func (s *Store) UpdateKnowledgeFile(ctx context.Context, update *KnowledgeFile) (*KnowledgeFile, error) {
	return s.driver.UpdateKnowledgeFile(ctx, update)
}

func (s *Store) DeleteKnowledgeFile(ctx context.Context, delete *DeleteKnowledgeFile) error {
	return s.driver.DeleteKnowledgeFile(ctx, delete)
}
