package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/internal/profile"
)

// scopeDriver is a minimal Driver fake for scope resolution tests.
type scopeDriver struct {
	Driver

	files     []*KnowledgeFile
	documents []*Document

	listFileCalls int
}

func (d *scopeDriver) ListKnowledgeFiles(_ context.Context, find *FindKnowledgeFile) ([]*KnowledgeFile, error) {
	d.listFileCalls++
	matched := []*KnowledgeFile{}
	for _, file := range d.files {
		if find.AssistantID != nil && file.AssistantID != *find.AssistantID {
			continue
		}
		if find.Enabled != nil && file.Enabled != *find.Enabled {
			continue
		}
		matched = append(matched, file)
	}
	return matched, nil
}

func (d *scopeDriver) ListDocuments(_ context.Context, find *FindDocument) ([]*Document, error) {
	matched := []*Document{}
	for _, document := range d.documents {
		if find.Status != nil && document.Status != *find.Status {
			continue
		}
		matched = append(matched, document)
	}
	return matched, nil
}

func (*scopeDriver) GetDB() *sql.DB { return nil }
func (*scopeDriver) Close() error   { return nil }

func newScopeStore(t *testing.T, driver *scopeDriver) *Store {
	t.Helper()
	s := New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite"})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestResolveDocumentScope(t *testing.T) {
	driver := &scopeDriver{
		files: []*KnowledgeFile{
			{ID: 1, AssistantID: "asst-1", Enabled: true},
			{ID: 2, AssistantID: "asst-1", Enabled: false},
		},
		documents: []*Document{
			{ID: 100, AssistantID: "asst-1", KnowledgeFileID: 1, Status: DocumentStatusCompleted},
			{ID: 101, AssistantID: "asst-1", KnowledgeFileID: 1, Status: DocumentStatusPending},
		},
	}
	s := newScopeStore(t, driver)

	scope, err := s.ResolveDocumentScope(context.Background(), "asst-1")
	require.NoError(t, err)
	assert.Equal(t, []int32{100}, scope)
}

func TestResolveDocumentScopeIsCached(t *testing.T) {
	driver := &scopeDriver{
		files: []*KnowledgeFile{{ID: 1, AssistantID: "asst-1", Enabled: true}},
		documents: []*Document{
			{ID: 100, AssistantID: "asst-1", KnowledgeFileID: 1, Status: DocumentStatusCompleted},
		},
	}
	s := newScopeStore(t, driver)
	ctx := context.Background()

	_, err := s.ResolveDocumentScope(ctx, "asst-1")
	require.NoError(t, err)
	_, err = s.ResolveDocumentScope(ctx, "asst-1")
	require.NoError(t, err)
	assert.Equal(t, 1, driver.listFileCalls)

	s.InvalidateDocumentScope(ctx, "asst-1")
	_, err = s.ResolveDocumentScope(ctx, "asst-1")
	require.NoError(t, err)
	assert.Equal(t, 2, driver.listFileCalls)
}

func TestResolveDocumentScopeEmptyIsCachedToo(t *testing.T) {
	driver := &scopeDriver{}
	s := newScopeStore(t, driver)
	ctx := context.Background()

	scope, err := s.ResolveDocumentScope(ctx, "asst-without-files")
	require.NoError(t, err)
	assert.Empty(t, scope)

	_, err = s.ResolveDocumentScope(ctx, "asst-without-files")
	require.NoError(t, err)
	assert.Equal(t, 1, driver.listFileCalls)
}
