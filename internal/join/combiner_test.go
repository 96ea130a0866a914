package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

func f(v float64) *float64 { return &v }

func testCatalog() *Catalog {
	return NewCatalog([]models.Category{
		{ID: "cat-passing", Name: "Passing Yards", GroupName: "Passing", Sport: "Football"},
		{ID: "cat-points", Name: "Points", GroupName: "Scoring", Sport: "Basketball"},
		{ID: "cat-passing", Name: "Duplicate, ignored", GroupName: "x", Sport: "x"},
	})
}

func TestCatalogLines(t *testing.T) {
	catalog := testCatalog()
	require.Equal(t, 2, catalog.Len())

	records := []models.MarketRecord{
		{PlayerName: "Jalen Hurts", CategoryID: "cat-passing", NumericID: "204", FinalLine: f(249.5), TopOverValue: f(1.87)},
		{PlayerName: "Jalen Hurts", CategoryID: "cat-unknown", NumericID: "999", FinalLine: f(3.5)},
	}

	lines := catalog.Lines(records)
	require.Len(t, lines, 2)

	assert.Equal(t, "Passing Yards", lines[0].CategoryName)
	assert.Equal(t, "Passing", lines[0].GroupName)
	assert.Equal(t, "Football", lines[0].Sport)
	assert.Equal(t, f(249.5), lines[0].FinalLine)

	// Left join: unknown category keeps the record, with empty metadata.
	assert.Equal(t, "cat-unknown", lines[1].CategoryID)
	assert.Empty(t, lines[1].CategoryName)
	assert.Empty(t, lines[1].Sport)
	assert.Equal(t, f(3.5), lines[1].FinalLine)
}

func TestCatalogDuplicateIDFirstWins(t *testing.T) {
	catalog := testCatalog()
	cat, ok := catalog.Lookup("cat-passing")
	require.True(t, ok)
	assert.Equal(t, "Passing Yards", cat.Name)
}

func TestFinalRows(t *testing.T) {
	lines := []models.PlayerLine{
		{
			PlayerName: "Jalen Hurts", CategoryID: "cat-passing", NumericID: "204",
			CategoryName: "Passing Yards", GroupName: "Passing",
			FinalLine: f(249.5), TopOverValue: f(1.87), TopUnderValue: f(1.95),
		},
		{
			PlayerName: "Empty Market", CategoryID: "cat-x", NumericID: "7",
			CategoryName: "Receptions",
		},
	}

	rows := FinalRows(lines)
	require.Len(t, rows, 2)

	assert.Equal(t, "cat-passing-204", rows[0].ID)
	assert.Equal(t, "Jalen Hurts", rows[0].PlayerName)
	assert.Equal(t, f(1.87), rows[0].DecimalOdds, "over price preferred")

	assert.Equal(t, "cat-x-7", rows[1].ID)
	assert.Equal(t, "receptions", rows[1].Market)
	assert.Nil(t, rows[1].DecimalOdds, "nothing decoded stays nil, never zero")
}

func TestMapMarket(t *testing.T) {
	tests := []struct {
		categoryName string
		groupName    string
		want         string
	}{
		{"Points", "Scoring", "player_points"},
		{"Pts + Rebs", "Combos", "player_points"},
		{"Team Total", "", "team_total"},
		{"Over/Under", "", "team_total"},
		{"Moneyline", "", "moneyline"},
		{"Passing Yards", "Passing", "passing_yards"},
		{"", "Anything", ""},
	}
	for _, tt := range tests {
		got := MapMarket(tt.categoryName, tt.groupName)
		assert.Equalf(t, tt.want, got, "MapMarket(%q, %q)", tt.categoryName, tt.groupName)
	}
}

func TestPickDecimalOddsFallbacks(t *testing.T) {
	assert.Equal(t, f(1.9), pickDecimalOdds(models.PlayerLine{TopOverValue: f(1.9), TopUnderValue: f(2.0), FinalLine: f(10)}))
	assert.Equal(t, f(2.0), pickDecimalOdds(models.PlayerLine{TopUnderValue: f(2.0), FinalLine: f(10)}))
	assert.Equal(t, f(10.0), pickDecimalOdds(models.PlayerLine{FinalLine: f(10)}))
	assert.Nil(t, pickDecimalOdds(models.PlayerLine{}))
}
