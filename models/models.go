package models

import (
	"gorm.io/gorm"
)

// ========================
// DOMAIN MODELS
// ========================

// InteractionRecord is a single question or answer extracted from a Quora
// page. Timestamps keep the source's own format — they are displayed, never
// compared.
type InteractionRecord struct {
	Username  string   `json:"username"`
	Bio       string   `json:"bio"`
	PostType  string   `json:"post_type"` // "question" | "answer"
	Timestamp string   `json:"timestamp"`
	Upvotes   int      `json:"upvotes"`
	Links     []string `json:"links"`
}

// SourcedInteractions pairs a source URL with the interactions found on it.
// Held in memory for the duration of one run only.
type SourcedInteractions struct {
	WebsiteURL   string              `json:"website_url"`
	Interactions []InteractionRecord `json:"interactions"`
}

// FlatRowColumns is the fixed export column set, in order. The CSV header
// and the spreadsheet payload both use exactly these names.
var FlatRowColumns = []string{"Website URL", "Username", "Bio", "Post Type", "Timestamp", "Upvotes", "Links"}

// FlatRow is one spreadsheet/CSV-ready record. JSON tags match the column
// names so the integration payload carries human-readable headers.
type FlatRow struct {
	WebsiteURL string `json:"Website URL"`
	Username   string `json:"Username"`
	Bio        string `json:"Bio"`
	PostType   string `json:"Post Type"`
	Timestamp  string `json:"Timestamp"`
	Upvotes    int    `json:"Upvotes"`
	Links      string `json:"Links"` // comma-joined
}

// ========================
// DATABASE MODELS
// ========================

// LeadRun is the persisted summary of one pipeline execution.
type LeadRun struct {
	gorm.Model
	RunID          string `gorm:"uniqueIndex" json:"run_id"`
	Query          string `json:"query"`
	CondensedQuery string `json:"condensed_query"`
	URLCount       int    `json:"url_count"`
	RowCount       int    `json:"row_count"`
	SheetURL       string `json:"sheet_url"`
	Status         string `json:"status"` // completed | no_urls | no_interactions | publish_failed
	TokensUsed     int    `json:"tokens_used"`
}

// QueryLog tracks token usage per LLM call.
type QueryLog struct {
	gorm.Model
	QueryType  string // e.g. "condense", "scrape-fallback"
	QueryText  string
	TokensUsed int `gorm:"default:0"`
}

// ========================
// API REQUEST PAYLOADS
// ========================

type GenerateLeadsRequest struct {
	Query      string `json:"query"`
	NumLinks   int    `json:"num_links"`
	SheetTitle string `json:"sheet_title,omitempty"`
	Debug      bool   `json:"debug,omitempty"`

	// Optional per-request credential overrides; environment values are
	// used when these are empty.
	FirecrawlAPIKey string `json:"firecrawl_api_key,omitempty"`
	GeminiAPIKeys   string `json:"gemini_api_keys,omitempty"` // comma-separated
	ComposioAPIKey  string `json:"composio_api_key,omitempty"`
}

type GenerateLeadsResponse struct {
	RunID          string        `json:"run_id"`
	CondensedQuery string        `json:"condensed_query"`
	URLs           []string      `json:"urls"`
	Rows           []FlatRow     `json:"rows"`
	SheetURL       string        `json:"sheet_url,omitempty"`
	CSVAvailable   bool          `json:"csv_available"`
	Warning        string        `json:"warning,omitempty"`
	Debug          *PublishDebug `json:"debug,omitempty"`
}

// PublishDebug carries the publisher's diagnostic payload for manual
// inspection when a request sets the debug flag.
type PublishDebug struct {
	PayloadVariant string `json:"payload_variant"`
	ResultType     string `json:"result_type"`
	Preview        string `json:"preview"`
}
