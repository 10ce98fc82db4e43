package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens-cli/internal/model"
)

func TestCompetitorVisibility_ConcreteScenario(t *testing.T) {
	// Two "best crm" records, one citing salesforce.com. The denominator
	// counts both records in the query group, not just the mentioning one.
	no := false
	d1 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	records := []model.SearchRecord{
		{Query: "best crm", Brand: "Acme", Mentioned: &no, CreatedAt: d1},
		{
			Query:     "best crm",
			Brand:     "Acme",
			CreatedAt: d2,
			RawOutput: `{"output":[{"type":"message","content":[{"text":"Top picks include several vendors.","annotations":[{"type":"url_citation","url":"https://www.salesforce.com/crm","title":"Salesforce"}]}]}]}`,
		},
	}
	competitors := []model.Competitor{{Name: "Salesforce", Domain: "salesforce.com"}}

	metrics := CompetitorVisibility(records, competitors)
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.Equal(t, 1, m.MentionCount)
	assert.Equal(t, 2, m.ApplicableSearches)
	assert.Equal(t, 50.0, m.VisibilityPercent)
	require.NotNil(t, m.LastSeenAt)
	assert.True(t, m.LastSeenAt.Equal(d2))
}

func TestCompetitorVisibility_DenominatorCountedOncePerQuery(t *testing.T) {
	// Three records share one query; the competitor appears in two of
	// them. The query group's total (3) is added once, not twice.
	mk := func(day int, text string) model.SearchRecord {
		return model.SearchRecord{
			Query:     "best crm",
			Brand:     "Acme",
			RawOutput: text,
			CreatedAt: time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		}
	}
	records := []model.SearchRecord{
		mk(25, "HubSpot leads the pack"),
		mk(26, "HubSpot again"),
		mk(27, "nothing relevant"),
	}
	competitors := []model.Competitor{{Name: "HubSpot", Domain: "hubspot.com"}}

	metrics := CompetitorVisibility(records, competitors)
	require.Len(t, metrics, 1)
	assert.Equal(t, 2, metrics[0].MentionCount)
	assert.Equal(t, 3, metrics[0].ApplicableSearches)
	assert.InDelta(t, 66.67, metrics[0].VisibilityPercent, 0.01)
}

func TestCompetitorVisibility_Bounds(t *testing.T) {
	// Percentages are never NaN and stay within [0, 100]; an empty
	// universe yields exactly zero.
	records := []model.SearchRecord{
		{Query: "q1", Brand: "Acme", RawOutput: "HubSpot everywhere", CreatedAt: time.Now()},
		{Query: "q2", Brand: "Acme", RawOutput: "HubSpot also here", CreatedAt: time.Now()},
	}
	competitors := []model.Competitor{
		{Name: "HubSpot", Domain: "hubspot.com"},
		{Name: "Nowhere Corp", Domain: "nowhere.example"},
	}

	metrics := CompetitorVisibility(records, competitors)
	require.Len(t, metrics, 2)
	for _, m := range metrics {
		assert.GreaterOrEqual(t, m.VisibilityPercent, 0.0)
		assert.LessOrEqual(t, m.VisibilityPercent, 100.0)
		assert.False(t, m.VisibilityPercent != m.VisibilityPercent, "NaN visibility")
	}

	// The unmatched competitor has a zero denominator and exactly 0%.
	var nowhere model.CompetitorMetric
	for _, m := range metrics {
		if m.Name == "Nowhere Corp" {
			nowhere = m
		}
	}
	assert.Equal(t, 0, nowhere.ApplicableSearches)
	assert.Equal(t, 0.0, nowhere.VisibilityPercent)
	assert.Nil(t, nowhere.LastSeenAt)
}

func TestCompetitorVisibility_SortedByVisibility(t *testing.T) {
	records := []model.SearchRecord{
		{Query: "a", Brand: "Acme", RawOutput: "Alpha and Beta compared", CreatedAt: time.Now()},
		{Query: "a", Brand: "Acme", RawOutput: "only Beta here", CreatedAt: time.Now()},
	}
	competitors := []model.Competitor{
		{Name: "Alpha", Domain: "alpha.example"},
		{Name: "Beta", Domain: "beta.example"},
	}

	metrics := CompetitorVisibility(records, competitors)
	require.Len(t, metrics, 2)
	assert.Equal(t, "Beta", metrics[0].Name)
	assert.Equal(t, "Alpha", metrics[1].Name)
}

func TestCompetitorVisibility_EmptyInputs(t *testing.T) {
	assert.Empty(t, CompetitorVisibility(nil, nil))
	assert.Empty(t, CompetitorVisibility([]model.SearchRecord{{Query: "q"}}, nil))

	metrics := CompetitorVisibility(nil, []model.Competitor{{Name: "X", Domain: "x.example"}})
	require.Len(t, metrics, 1)
	assert.Equal(t, 0.0, metrics[0].VisibilityPercent)
}

func TestCompetitorVisibility_QueryTrimmedForGrouping(t *testing.T) {
	records := []model.SearchRecord{
		{Query: "best crm", Brand: "Acme", RawOutput: "HubSpot wins", CreatedAt: time.Now()},
		{Query: "  best crm  ", Brand: "Acme", RawOutput: "no one here", CreatedAt: time.Now()},
	}
	competitors := []model.Competitor{{Name: "HubSpot", Domain: "hubspot.com"}}

	metrics := CompetitorVisibility(records, competitors)
	require.Len(t, metrics, 1)
	assert.Equal(t, 2, metrics[0].ApplicableSearches, "trimmed queries share a denominator group")
}
