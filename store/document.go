package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"
)

// Document status values.
const (
	DocumentStatusPending    = "PENDING"
	DocumentStatusProcessing = "PROCESSING"
	DocumentStatusCompleted  = "COMPLETED"
	DocumentStatusFailed     = "FAILED"
)

// Document represents a text document extracted from a knowledge file.
type Document struct {
	ID              int32
	UID             string
	AssistantID     string
	KnowledgeFileID int32
	Title           string
	Status          string
	CreatedTs       int64
	UpdatedTs       int64
}

// FindDocument is the find condition for documents.
type FindDocument struct {
	ID               *int32
	UID              *string
	AssistantID      *string
	KnowledgeFileIDs []int32
	Status           *string
	Limit            *int
}

// DeleteDocument is the delete condition for documents.
type DeleteDocument struct {
	ID int32
}

// DocumentChunk is a bounded-size slice of a document, the unit of
// vector-similarity retrieval.
type DocumentChunk struct {
	ID         int32
	DocumentID int32
	ChunkIndex int32
	Content    string
	Heading    string // nearest markdown heading above the chunk, may be empty
	CreatedTs  int64
}

// FindDocumentChunk is the find condition for document chunks.
type FindDocumentChunk struct {
	ID          *int32
	DocumentIDs []int32
	Limit       *int
}

// KeywordSearchOptions represents the options for keyword chunk search.
// Keywords are OR-matched case-insensitively against chunk content.
type KeywordSearchOptions struct {
	DocumentIDs []int32
	Keywords    []string
	Limit       int
}

func (s *Store) CreateDocument(ctx context.Context, create *Document) (*Document, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateDocument(ctx, create)
}

func (s *Store) ListDocuments(ctx context.Context, find *FindDocument) ([]*Document, error) {
	return s.driver.ListDocuments(ctx, find)
}

func (s *Store) UpdateDocument(ctx context.Context, update *Document) (*Document, error) {
	return s.driver.UpdateDocument(ctx, update)
}

func (s *Store) DeleteDocument(ctx context.Context, delete *DeleteDocument) error {
	return s.driver.DeleteDocument(ctx, delete)
}

func (s *Store) CreateDocumentChunk(ctx context.Context, create *DocumentChunk) (*DocumentChunk, error) {
	return s.driver.CreateDocumentChunk(ctx, create)
}

func (s *Store) ListDocumentChunks(ctx context.Context, find *FindDocumentChunk) ([]*DocumentChunk, error) {
	return s.driver.ListDocumentChunks(ctx, find)
}

// KeywordSearchChunks performs keyword (OR) search over chunk content,
// restricted to the given document allow-list.
func (s *Store) KeywordSearchChunks(ctx context.Context, opts *KeywordSearchOptions) ([]*DocumentChunk, error) {
	if len(opts.DocumentIDs) == 0 || len(opts.Keywords) == 0 {
		return []*DocumentChunk{}, nil
	}
	return s.driver.KeywordSearchChunks(ctx, opts)
}
