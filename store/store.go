package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// scopeCache caches resolved tenant document scopes. The scope resolution
	// (enabled knowledge files -> documents) runs on every document search,
	// so it is the hottest read path in the store.
	scopeCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	return &Store{
		driver:      driver,
		profile:     profile,
		cacheConfig: cacheConfig,
		scopeCache:  cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.scopeCache.Close()
	return s.driver.Close()
}

// ResolveDocumentScope resolves the set of completed document IDs a tenant may
// search: enabled knowledge files first, then the documents linked to them.
// An empty result means the tenant has nothing searchable; callers must
// short-circuit instead of querying unscoped.
func (s *Store) ResolveDocumentScope(ctx context.Context, assistantID string) ([]int32, error) {
	cacheKey := fmt.Sprintf("document-scope:%s", assistantID)
	if cached, ok := s.scopeCache.Get(ctx, cacheKey); ok {
		if ids, ok := cached.([]int32); ok {
			return ids, nil
		}
	}

	enabled := true
	files, err := s.driver.ListKnowledgeFiles(ctx, &FindKnowledgeFile{
		AssistantID: &assistantID,
		Enabled:     &enabled,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.scopeCache.Set(ctx, cacheKey, []int32{})
		return []int32{}, nil
	}

	fileIDs := make([]int32, 0, len(files))
	for _, file := range files {
		fileIDs = append(fileIDs, file.ID)
	}

	status := DocumentStatusCompleted
	documents, err := s.driver.ListDocuments(ctx, &FindDocument{
		AssistantID:      &assistantID,
		KnowledgeFileIDs: fileIDs,
		Status:           &status,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int32, 0, len(documents))
	for _, document := range documents {
		ids = append(ids, document.ID)
	}

	s.scopeCache.Set(ctx, cacheKey, ids)
	return ids, nil
}

// InvalidateDocumentScope drops the cached scope for a tenant, e.g. after a
// knowledge file is toggled or a document finishes processing.
func (s *Store) InvalidateDocumentScope(ctx context.Context, assistantID string) {
	s.scopeCache.Delete(ctx, fmt.Sprintf("document-scope:%s", assistantID))
}
