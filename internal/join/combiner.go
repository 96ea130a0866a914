// Package join pairs decoded market records with category metadata and
// projects them into the downstream export schema.
package join

import (
	"fmt"
	"strings"

	"github.com/Vodeneev/vodeneevprops/internal/pkg/models"
)

// Catalog is a category lookup by id (the raw encoded category token).
type Catalog struct {
	byID map[string]models.Category
}

// NewCatalog indexes categories by id. On duplicate ids the first entry
// wins, matching the upstream ordering.
func NewCatalog(categories []models.Category) *Catalog {
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = c
		}
	}
	return &Catalog{byID: byID}
}

// Lookup returns the category for an id, if known.
func (c *Catalog) Lookup(id string) (models.Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// Len returns the number of indexed categories.
func (c *Catalog) Len() int { return len(c.byID) }

// Lines left-joins decoded records against the catalog on the category id.
// Records with no catalog entry keep empty name/group/sport; an unknown
// category is still a decoded market worth exporting.
func (c *Catalog) Lines(records []models.MarketRecord) []models.PlayerLine {
	lines := make([]models.PlayerLine, 0, len(records))
	for _, r := range records {
		line := models.PlayerLine{
			PlayerName:    r.PlayerName,
			CategoryID:    r.CategoryID,
			NumericID:     r.NumericID,
			FinalLine:     r.FinalLine,
			TopOverValue:  r.TopOverValue,
			TopUnderValue: r.TopUnderValue,
		}
		if cat, ok := c.byID[r.CategoryID]; ok {
			line.CategoryName = cat.Name
			line.GroupName = cat.GroupName
			line.Sport = cat.Sport
		}
		lines = append(lines, line)
	}
	return lines
}

// FinalRows projects joined lines into the requested downstream schema:
// one row with a stable composite id, a canonical market slug, and the
// best decimal odds we decoded.
func FinalRows(lines []models.PlayerLine) []models.FinalLineRow {
	rows := make([]models.FinalLineRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, models.FinalLineRow{
			ID:          buildRowID(l),
			Market:      MapMarket(l.CategoryName, l.GroupName),
			PlayerName:  l.PlayerName,
			DecimalOdds: pickDecimalOdds(l),
		})
	}
	return rows
}

// buildRowID composes "<category_id>-<numeric_id>", falling back to
// whichever part exists so a row never ships without an id.
func buildRowID(l models.PlayerLine) string {
	switch {
	case l.CategoryID != "" && l.NumericID != "":
		return fmt.Sprintf("%s-%s", l.CategoryID, l.NumericID)
	case l.CategoryID != "":
		return l.CategoryID
	default:
		return l.NumericID
	}
}

// MapMarket maps a category name to a canonical market slug. The upstream
// names are free-form, so this is heuristic: known shapes map to stable
// slugs, everything else is slugified as-is.
func MapMarket(categoryName, groupName string) string {
	if categoryName == "" {
		return ""
	}
	cn := strings.ToLower(categoryName)
	gn := strings.ToLower(groupName)
	switch {
	case strings.Contains(cn, "points") || strings.Contains(cn, "pts") || strings.Contains(gn, "points"):
		return "player_points"
	case strings.Contains(cn, "total") || strings.Contains(cn, "over") || strings.Contains(cn, "under") || strings.Contains(gn, "total"):
		return "team_total"
	case strings.Contains(cn, "moneyline") || strings.Contains(cn, "money") || cn == "ml":
		return "moneyline"
	default:
		return strings.ReplaceAll(cn, " ", "_")
	}
}

// pickDecimalOdds prefers the over price, then the under, then the line;
// nil when nothing was decoded.
func pickDecimalOdds(l models.PlayerLine) *float64 {
	if l.TopOverValue != nil {
		return l.TopOverValue
	}
	if l.TopUnderValue != nil {
		return l.TopUnderValue
	}
	return l.FinalLine
}
