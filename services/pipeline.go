package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/leadscout/leadscout-backend/models"
)

// runRows keeps each run's flattened rows in memory so the CSV download
// endpoint can serve them after the generate response has gone out. Session
// scoped, cleared on reset.
var (
	runRowsMu sync.RWMutex
	runRows   = map[string][]models.FlatRow{}
)

func storeRunRows(runID string, rows []models.FlatRow) {
	runRowsMu.Lock()
	defer runRowsMu.Unlock()
	runRows[runID] = rows
}

// StoredRunRows returns the rows held for a finished run, if any.
func StoredRunRows(runID string) ([]models.FlatRow, bool) {
	runRowsMu.RLock()
	defer runRowsMu.RUnlock()
	rows, ok := runRows[runID]
	return rows, ok
}

// ClearRunRows drops all stored run rows.
func ClearRunRows() {
	runRowsMu.Lock()
	defer runRowsMu.Unlock()
	runRows = map[string][]models.FlatRow{}
}

// LeadPipelineInput carries the resolved inputs for one pipeline execution.
// Credentials are already resolved (request override > environment) by the
// handler before this is built.
type LeadPipelineInput struct {
	Query        string
	NumLinks     int
	SheetTitle   string
	FirecrawlKey string
	GeminiKeys   []string
	ComposioKey  string
	Debug        bool
}

// RunLeadPipeline executes the condense → search → extract → flatten →
// publish sequence. Control flow is strictly linear: any stage producing
// nothing short-circuits to a user-facing warning. Only the condenser's LLM
// error propagates as an error; everything downstream degrades in place.
func RunLeadPipeline(in LeadPipelineInput) (*models.GenerateLeadsResponse, error) {
	pool := SessionKeyPool(in.GeminiKeys)

	condensed, tokens, err := CondenseQuery(pool, in.Query)
	if err != nil {
		return nil, fmt.Errorf("query condenser failed: %w", err)
	}
	LogQueryTokens("condense", in.Query, tokens)

	resp := &models.GenerateLeadsResponse{
		RunID:          uuid.NewString(),
		CondensedQuery: condensed,
	}
	run := &models.LeadRun{
		RunID:          resp.RunID,
		Query:          in.Query,
		CondensedQuery: condensed,
		TokensUsed:     tokens,
	}

	urls, err := FindLinks(condensed, in.FirecrawlKey, in.NumLinks)
	if err != nil {
		// Degrades to empty; upstream failure and confirmed-empty differ
		// only in the log line.
		log.Printf("[Pipeline] link search degraded to empty: %v", err)
	}
	resp.URLs = urls
	run.URLCount = len(urls)

	if len(urls) == 0 {
		resp.Warning = "No relevant URLs found."
		run.Status = "no_urls"
		SaveRun(run)
		return resp, nil
	}

	sourced := ExtractInteractions(urls, in.FirecrawlKey, pool)
	rows := Flatten(sourced)
	resp.Rows = rows
	run.RowCount = len(rows)

	if len(rows) == 0 {
		resp.Warning = "No interactions found on the discovered pages."
		run.Status = "no_interactions"
		SaveRun(run)
		return resp, nil
	}

	storeRunRows(resp.RunID, rows)
	resp.CSVAvailable = true

	sheetURL, dbg := PublishSheet(rows, in.ComposioKey, in.SheetTitle, in.Debug)
	if in.Debug {
		resp.Debug = dbg
	}
	run.SheetURL = sheetURL
	if sheetURL == "" {
		resp.Warning = "Failed to retrieve the Google Sheets link. Download the CSV instead."
		run.Status = "publish_failed"
	} else {
		resp.SheetURL = sheetURL
		run.Status = "completed"
	}
	SaveRun(run)

	log.Printf("[Pipeline] run %s: %d urls, %d rows, sheet=%v", resp.RunID, len(urls), len(rows), sheetURL != "")
	return resp, nil
}
