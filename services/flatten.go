package services

import (
	"strings"

	"github.com/leadscout/leadscout-backend/models"
)

// Flatten projects every interaction under every source URL into exactly one
// FlatRow, preserving input order across URLs and within each URL's
// interaction list. Pure function: missing optionals stay at their zero
// values and links are joined with ", ".
func Flatten(records []models.SourcedInteractions) []models.FlatRow {
	var rows []models.FlatRow
	for _, src := range records {
		for _, it := range src.Interactions {
			rows = append(rows, models.FlatRow{
				WebsiteURL: src.WebsiteURL,
				Username:   it.Username,
				Bio:        it.Bio,
				PostType:   it.PostType,
				Timestamp:  it.Timestamp,
				Upvotes:    it.Upvotes,
				Links:      strings.Join(it.Links, ", "),
			})
		}
	}
	return rows
}
