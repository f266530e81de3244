package search

import (
	"context"
	"database/sql"
	"strings"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/store"
)

// fakeDriver is an in-memory store.Driver for retriever tests. Only the read
// paths the retrievers exercise are implemented with real filtering; writes
// are simple appends.
type fakeDriver struct {
	faqs      []*store.FAQ
	files     []*store.KnowledgeFile
	documents []*store.Document
	chunks    []*store.DocumentChunk
	websites  []*store.Website
	pages     []*store.WebsitePage

	vectorHits []*store.ChunkWithScore
	vectorErr  error
}

func newTestStore(driver *fakeDriver) *store.Store {
	return store.New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite"})
}

func (*fakeDriver) GetDB() *sql.DB { return nil }
func (*fakeDriver) Close() error   { return nil }
func (*fakeDriver) IsInitialized(context.Context) (bool, error) {
	return true, nil
}

func (d *fakeDriver) CreateFAQ(_ context.Context, create *store.FAQ) (*store.FAQ, error) {
	d.faqs = append(d.faqs, create)
	return create, nil
}

func (d *fakeDriver) ListFAQs(_ context.Context, find *store.FindFAQ) ([]*store.FAQ, error) {
	matched := []*store.FAQ{}
	for _, faq := range d.faqs {
		if find.AssistantID != nil && faq.AssistantID != *find.AssistantID {
			continue
		}
		if find.Enabled != nil && faq.Enabled != *find.Enabled {
			continue
		}
		matched = append(matched, faq)
	}
	return matched, nil
}

func (*fakeDriver) UpdateFAQ(_ context.Context, update *store.FAQ) (*store.FAQ, error) {
	return update, nil
}
func (*fakeDriver) DeleteFAQ(context.Context, *store.DeleteFAQ) error { return nil }

func (d *fakeDriver) CreateKnowledgeFile(_ context.Context, create *store.KnowledgeFile) (*store.KnowledgeFile, error) {
	d.files = append(d.files, create)
	return create, nil
}

func (d *fakeDriver) ListKnowledgeFiles(_ context.Context, find *store.FindKnowledgeFile) ([]*store.KnowledgeFile, error) {
	matched := []*store.KnowledgeFile{}
	for _, file := range d.files {
		if find.AssistantID != nil && file.AssistantID != *find.AssistantID {
			continue
		}
		if find.Enabled != nil && file.Enabled != *find.Enabled {
			continue
		}
		if find.ContainsText != nil && !containsFold(file.Name+" "+file.Description, *find.ContainsText) {
			continue
		}
		matched = append(matched, file)
	}
	return matched, nil
}

func (*fakeDriver) UpdateKnowledgeFile(_ context.Context, update *store.KnowledgeFile) (*store.KnowledgeFile, error) {
	return update, nil
}
func (*fakeDriver) DeleteKnowledgeFile(context.Context, *store.DeleteKnowledgeFile) error {
	return nil
}

func (d *fakeDriver) CreateDocument(_ context.Context, create *store.Document) (*store.Document, error) {
	d.documents = append(d.documents, create)
	return create, nil
}

func (d *fakeDriver) ListDocuments(_ context.Context, find *store.FindDocument) ([]*store.Document, error) {
	matched := []*store.Document{}
	for _, document := range d.documents {
		if find.AssistantID != nil && document.AssistantID != *find.AssistantID {
			continue
		}
		if find.Status != nil && document.Status != *find.Status {
			continue
		}
		if len(find.KnowledgeFileIDs) > 0 && !containsID(find.KnowledgeFileIDs, document.KnowledgeFileID) {
			continue
		}
		matched = append(matched, document)
	}
	return matched, nil
}

func (*fakeDriver) UpdateDocument(_ context.Context, update *store.Document) (*store.Document, error) {
	return update, nil
}
func (*fakeDriver) DeleteDocument(context.Context, *store.DeleteDocument) error { return nil }

func (d *fakeDriver) CreateDocumentChunk(_ context.Context, create *store.DocumentChunk) (*store.DocumentChunk, error) {
	d.chunks = append(d.chunks, create)
	return create, nil
}

func (d *fakeDriver) ListDocumentChunks(_ context.Context, find *store.FindDocumentChunk) ([]*store.DocumentChunk, error) {
	matched := []*store.DocumentChunk{}
	for _, chunk := range d.chunks {
		if len(find.DocumentIDs) > 0 && !containsID(find.DocumentIDs, chunk.DocumentID) {
			continue
		}
		matched = append(matched, chunk)
	}
	return matched, nil
}

func (d *fakeDriver) KeywordSearchChunks(_ context.Context, opts *store.KeywordSearchOptions) ([]*store.DocumentChunk, error) {
	matched := []*store.DocumentChunk{}
	for _, chunk := range d.chunks {
		if !containsID(opts.DocumentIDs, chunk.DocumentID) {
			continue
		}
		for _, keyword := range opts.Keywords {
			if containsFold(chunk.Content, keyword) {
				matched = append(matched, chunk)
				break
			}
		}
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (*fakeDriver) UpsertChunkEmbedding(_ context.Context, embedding *store.ChunkEmbedding) (*store.ChunkEmbedding, error) {
	return embedding, nil
}
func (*fakeDriver) ListChunkEmbeddings(context.Context, *store.FindChunkEmbedding) ([]*store.ChunkEmbedding, error) {
	return nil, nil
}
func (*fakeDriver) DeleteChunkEmbedding(context.Context, int32) error { return nil }

func (d *fakeDriver) VectorSearchChunks(context.Context, *store.VectorSearchOptions) ([]*store.ChunkWithScore, error) {
	if d.vectorErr != nil {
		return nil, d.vectorErr
	}
	return d.vectorHits, nil
}

func (*fakeDriver) FindChunksWithoutEmbedding(context.Context, *store.FindChunksWithoutEmbedding) ([]*store.DocumentChunk, error) {
	return nil, nil
}

func (d *fakeDriver) CreateWebsite(_ context.Context, create *store.Website) (*store.Website, error) {
	d.websites = append(d.websites, create)
	return create, nil
}

func (d *fakeDriver) ListWebsites(_ context.Context, find *store.FindWebsite) ([]*store.Website, error) {
	matched := []*store.Website{}
	for _, website := range d.websites {
		if find.AssistantID != nil && website.AssistantID != *find.AssistantID {
			continue
		}
		if find.Enabled != nil && website.Enabled != *find.Enabled {
			continue
		}
		if find.ContainsText != nil && !containsFold(website.URL+" "+website.Title+" "+website.Description, *find.ContainsText) {
			continue
		}
		matched = append(matched, website)
	}
	return matched, nil
}

func (*fakeDriver) UpdateWebsite(_ context.Context, update *store.Website) (*store.Website, error) {
	return update, nil
}
func (*fakeDriver) DeleteWebsite(context.Context, *store.DeleteWebsite) error { return nil }

func (d *fakeDriver) CreateWebsitePage(_ context.Context, create *store.WebsitePage) (*store.WebsitePage, error) {
	d.pages = append(d.pages, create)
	return create, nil
}

func (d *fakeDriver) ListWebsitePages(_ context.Context, find *store.FindWebsitePage) ([]*store.WebsitePage, error) {
	matched := []*store.WebsitePage{}
	for _, page := range d.pages {
		if find.AssistantID != nil && page.AssistantID != *find.AssistantID {
			continue
		}
		if find.ContainsText != nil && !containsFold(page.URL+" "+page.Title+" "+page.Content, *find.ContainsText) {
			continue
		}
		matched = append(matched, page)
	}
	return matched, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsID(ids []int32, id int32) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// fakeEmbedder is a deterministic ai.EmbeddingService for retriever tests.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, nil
}

func (*fakeEmbedder) Dimensions() int { return 4 }
