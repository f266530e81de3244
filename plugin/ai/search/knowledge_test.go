package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/store"
)

func TestKnowledgeFileRetrieverPositionalScores(t *testing.T) {
	driver := &fakeDriver{
		files: []*store.KnowledgeFile{
			{ID: 1, AssistantID: "asst-1", Name: "Prijslijst", Description: "Actuele prijzen", Enabled: true},
			{ID: 2, AssistantID: "asst-1", Name: "Handboek", Description: "Over prijzen en levering", Enabled: true},
			{ID: 3, AssistantID: "asst-1", Name: "Vakantierooster", Description: "", Enabled: true},
		},
	}
	retriever := NewKnowledgeFileRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "prijzen", &Options{
		AssistantID: "asst-1",
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, 1.0, results[0].BaseScore)
	assert.Equal(t, "2", results[1].ID)
	assert.Equal(t, 0.5, results[1].BaseScore)
}

func TestKnowledgeFileRetrieverDeduplicatesAcrossKeywords(t *testing.T) {
	driver := &fakeDriver{
		files: []*store.KnowledgeFile{
			{ID: 1, AssistantID: "asst-1", Name: "Levering en kosten", Enabled: true},
		},
	}
	retriever := NewKnowledgeFileRetriever(newTestStore(driver), NewPreprocessor())

	// Both keywords match the same file; it must appear once.
	results, err := retriever.Search(context.Background(), "levering kosten", &Options{
		AssistantID: "asst-1",
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestWebsiteRetrieverSkipsDisabled(t *testing.T) {
	driver := &fakeDriver{
		websites: []*store.Website{
			{ID: 1, AssistantID: "asst-1", URL: "https://a.nl", Title: "Prijzen", Enabled: false},
			{ID: 2, AssistantID: "asst-1", URL: "https://b.nl", Title: "Prijzen overzicht", Enabled: true},
		},
	}
	retriever := NewWebsiteRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "prijzen", &Options{
		AssistantID: "asst-1",
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)
	assert.Equal(t, "https://b.nl", results[0].URL)
}

func TestWebsitePageRetrieverTruncatesContent(t *testing.T) {
	long := make([]byte, 1200)
	for i := range long {
		long[i] = 'x'
	}
	driver := &fakeDriver{
		pages: []*store.WebsitePage{
			{ID: 1, WebsiteID: 1, AssistantID: "asst-1", URL: "https://a.nl/p", Title: "Prijzen", Content: "prijzen " + string(long)},
		},
	}
	retriever := NewWebsitePageRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "prijzen", &Options{
		AssistantID: "asst-1",
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Content, pageContentMaxChars)
	require.NotNil(t, results[0].Page)
	assert.Equal(t, int32(1), results[0].Page.WebsiteID)
}
