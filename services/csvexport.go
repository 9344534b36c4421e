package services

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/leadscout/leadscout-backend/models"
)

// RowsToCSV serializes rows for download: one header line with the fixed
// column set, then one record per FlatRow in order.
func RowsToCSV(rows []models.FlatRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(models.FlatRowColumns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.WebsiteURL,
			r.Username,
			r.Bio,
			r.PostType,
			r.Timestamp,
			strconv.Itoa(r.Upvotes),
			r.Links,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
