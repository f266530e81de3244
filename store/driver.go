package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// FAQ model related methods.
	CreateFAQ(ctx context.Context, create *FAQ) (*FAQ, error)
	ListFAQs(ctx context.Context, find *FindFAQ) ([]*FAQ, error)
	UpdateFAQ(ctx context.Context, update *FAQ) (*FAQ, error)
	DeleteFAQ(ctx context.Context, delete *DeleteFAQ) error

	// KnowledgeFile model related methods.
	CreateKnowledgeFile(ctx context.Context, create *KnowledgeFile) (*KnowledgeFile, error)
	ListKnowledgeFiles(ctx context.Context, find *FindKnowledgeFile) ([]*KnowledgeFile, error)
	UpdateKnowledgeFile(ctx context.Context, update *KnowledgeFile) (*KnowledgeFile, error)
	DeleteKnowledgeFile(ctx context.Context, delete *DeleteKnowledgeFile) error

	// Document model related methods.
	CreateDocument(ctx context.Context, create *Document) (*Document, error)
	ListDocuments(ctx context.Context, find *FindDocument) ([]*Document, error)
	UpdateDocument(ctx context.Context, update *Document) (*Document, error)
	DeleteDocument(ctx context.Context, delete *DeleteDocument) error

	// DocumentChunk model related methods.
	CreateDocumentChunk(ctx context.Context, create *DocumentChunk) (*DocumentChunk, error)
	ListDocumentChunks(ctx context.Context, find *FindDocumentChunk) ([]*DocumentChunk, error)

	// KeywordSearchChunks performs keyword (OR) containment search over chunk
	// content within a document allow-list.
	KeywordSearchChunks(ctx context.Context, opts *KeywordSearchOptions) ([]*DocumentChunk, error)

	// ChunkEmbedding model related methods.
	UpsertChunkEmbedding(ctx context.Context, embedding *ChunkEmbedding) (*ChunkEmbedding, error)
	ListChunkEmbeddings(ctx context.Context, find *FindChunkEmbedding) ([]*ChunkEmbedding, error)
	DeleteChunkEmbedding(ctx context.Context, chunkID int32) error

	// VectorSearchChunks performs cosine similarity search over chunk
	// embeddings within a document allow-list.
	VectorSearchChunks(ctx context.Context, opts *VectorSearchOptions) ([]*ChunkWithScore, error)

	// FindChunksWithoutEmbedding finds chunks missing an embedding for a model.
	FindChunksWithoutEmbedding(ctx context.Context, find *FindChunksWithoutEmbedding) ([]*DocumentChunk, error)

	// Website model related methods.
	CreateWebsite(ctx context.Context, create *Website) (*Website, error)
	ListWebsites(ctx context.Context, find *FindWebsite) ([]*Website, error)
	UpdateWebsite(ctx context.Context, update *Website) (*Website, error)
	DeleteWebsite(ctx context.Context, delete *DeleteWebsite) error

	// WebsitePage model related methods.
	CreateWebsitePage(ctx context.Context, create *WebsitePage) (*WebsitePage, error)
	ListWebsitePages(ctx context.Context, find *FindWebsitePage) ([]*WebsitePage, error)
}
