package models

import "time"

// PlayerMarkets is one search result from the upstream API: a participant
// plus the opaque markets64 blob holding all of their markets.
type PlayerMarkets struct {
	FirstName string `json:"first_name"`
	FullName  string `json:"full_name"`
	Markets64 string `json:"markets64"`
}

// MarketRecord is one decoded market for one participant.
// CategoryID is the raw encoded token recovered from the payload; it equals
// the category id the system endpoint reports, so it is the join key.
// NumericID is the human-usable trailing id from the decoded token.
// The three value fields are nil (not zero) when the payload held no
// plausible float for that role.
type MarketRecord struct {
	PlayerName    string   `json:"player_name"`
	CategoryID    string   `json:"category_id"`
	NumericID     string   `json:"numeric_id"`
	FinalLine     *float64 `json:"final_line"`
	TopOverValue  *float64 `json:"top_over_value"`
	TopUnderValue *float64 `json:"top_under_value"`
}

// Category is one wagering category from the system endpoint.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"group_name"`
	Sport     string `json:"sport"`
}

// PlayerLine is a MarketRecord joined against category metadata.
// Category fields stay empty when the catalog has no entry for the id.
type PlayerLine struct {
	PlayerName    string   `json:"player_name"`
	CategoryID    string   `json:"category_id"`
	NumericID     string   `json:"numeric_id"`
	CategoryName  string   `json:"category_name"`
	GroupName     string   `json:"group_name"`
	Sport         string   `json:"sport"`
	FinalLine     *float64 `json:"final_line"`
	TopOverValue  *float64 `json:"top_over_value"`
	TopUnderValue *float64 `json:"top_under_value"`
}

// FinalLineRow is the downstream schema: one row of the final export.
type FinalLineRow struct {
	ID          string   `json:"id"`
	Market      string   `json:"market"`
	PlayerName  string   `json:"player_name"`
	DecimalOdds *float64 `json:"decimal_odds"`
}

// RunSummary aggregates one pipeline run for logging and notifications.
type RunSummary struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	PlayersFetched int           `json:"players_fetched"`
	PlayersDecoded int           `json:"players_decoded"`
	PlayersFailed  int           `json:"players_failed"`
	Records        int           `json:"records"`
	Categories     int           `json:"categories"`
}
