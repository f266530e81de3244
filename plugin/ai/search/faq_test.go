package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvise/chatvise/store"
)

func TestFAQRetrieverMatchesThroughSynonyms(t *testing.T) {
	driver := &fakeDriver{
		faqs: []*store.FAQ{
			{
				ID:          1,
				AssistantID: "asst-1",
				Question:    "Wat kosten jullie abonnementen?",
				Answer:      "Onze tarieven beginnen bij 49 euro per maand.",
				Keywords:    "prijzen,tarieven",
				Enabled:     true,
			},
			{
				ID:          2,
				AssistantID: "asst-1",
				Question:    "Hoe kan ik mijn wachtwoord resetten?",
				Answer:      "Via de inlogpagina, klik op wachtwoord vergeten.",
				Keywords:    "wachtwoord,inloggen",
				Enabled:     true,
			},
		},
	}
	retriever := NewFAQRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "wat zijn de prijzen?", &Options{
		AssistantID: "asst-1",
		Limit:       5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// The pricing FAQ wins although it never contains the literal word
	// "prijzen" in its question: the synonym group bridges it.
	top := results[0]
	assert.Equal(t, SourceFAQ, top.Type)
	assert.Equal(t, "1", top.ID)
	assert.GreaterOrEqual(t, top.BaseScore, defaultFAQThreshold)
	require.NotNil(t, top.FAQ)
	assert.Equal(t, "Wat kosten jullie abonnementen?", top.FAQ.Question)
}

func TestFAQRetrieverFiltersBelowThreshold(t *testing.T) {
	driver := &fakeDriver{
		faqs: []*store.FAQ{
			{
				ID:          1,
				AssistantID: "asst-1",
				Question:    "Hoe werkt de garantie op apparaten?",
				Answer:      "Twee jaar fabrieksgarantie.",
				Enabled:     true,
			},
		},
	}
	retriever := NewFAQRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "openingstijden zaterdag", &Options{
		AssistantID: "asst-1",
		Limit:       5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFAQRetrieverSkipsDisabledAndForeignTenants(t *testing.T) {
	driver := &fakeDriver{
		faqs: []*store.FAQ{
			{ID: 1, AssistantID: "asst-1", Question: "prijzen", Answer: "prijzen info", Enabled: false},
			{ID: 2, AssistantID: "asst-2", Question: "prijzen", Answer: "prijzen info", Enabled: true},
		},
	}
	retriever := NewFAQRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "prijzen", &Options{
		AssistantID: "asst-1",
		Limit:       5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFAQRetrieverVerbatimQuestionScoresHighest(t *testing.T) {
	driver := &fakeDriver{
		faqs: []*store.FAQ{
			{
				ID:          1,
				AssistantID: "asst-1",
				Question:    "Hoe kan ik mijn bestelling retourneren?",
				Answer:      "Gebruik het retourformulier binnen 30 dagen.",
				Keywords:    "retour,retourneren",
				Enabled:     true,
			},
			{
				ID:          2,
				AssistantID: "asst-1",
				Question:    "Wat is het retouradres?",
				Answer:      "Postbus 100, Amsterdam.",
				Enabled:     true,
			},
		},
	}
	retriever := NewFAQRetriever(newTestStore(driver), NewPreprocessor())

	results, err := retriever.Search(context.Background(), "bestelling retourneren", &Options{
		AssistantID: "asst-1",
		Limit:       5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "1", results[0].ID)
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, splitKeywords("  "))
	assert.Equal(t, []string{"prijs", "korting"}, splitKeywords("Prijs, korting ,"))
}
