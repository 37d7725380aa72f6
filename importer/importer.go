// Package importer bulk-loads reviews from CSV exports through the same
// submission path the API uses.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"handyman/models"
	"handyman/store"

	"go.uber.org/zap"
)

// Columns every import file must have, in any order.
var requiredColumns = []string{"name", "email", "service", "rating", "comment"}

const progressEvery = 100

// Submitter stores one review; *store.ReviewStore satisfies it.
type Submitter interface {
	CreateReview(ctx context.Context, in models.ReviewSubmission) (*models.ReviewConfirmation, error)
}

// RowError is a row that was skipped. Row counts data rows from 1.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Result summarises an import.
type Result struct {
	Imported int
	Skipped  []RowError
}

// ImportCSV submits every data row of r. Rows with bad input or an unknown
// service are skipped and reported; a storage failure stops the import and
// is returned together with what was imported so far.
func ImportCSV(ctx context.Context, r io.Reader, s Submitter, log *zap.Logger) (Result, error) {
	var res Result

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return res, fmt.Errorf("import: file is empty")
	}
	if err != nil {
		return res, fmt.Errorf("import: read header: %w", err)
	}
	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := headerIndex[col]; !ok {
			return res, fmt.Errorf("import: missing column %q", col)
		}
	}
	// rows may carry extra columns
	reader.FieldsPerRecord = -1

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: row, Err: err})
			continue
		}
		if row%progressEvery == 0 {
			log.Info("import progress", zap.Int("row", row), zap.Int("imported", res.Imported))
		}

		sub, err := parseRow(record, headerIndex)
		if err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: row, Err: err})
			continue
		}

		if _, err := s.CreateReview(ctx, sub); err != nil {
			var ve *store.ValidationError
			var nf *store.NotFoundError
			if errors.As(err, &ve) || errors.As(err, &nf) {
				res.Skipped = append(res.Skipped, RowError{Row: row, Err: err})
				continue
			}
			return res, fmt.Errorf("import: row %d: %w", row, err)
		}
		res.Imported++
	}

	log.Info("import complete",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func parseRow(record []string, headerIndex map[string]int) (models.ReviewSubmission, error) {
	ratingText := getField(record, headerIndex, "rating")
	rating, err := strconv.Atoi(ratingText)
	if err != nil {
		return models.ReviewSubmission{}, fmt.Errorf("rating %q is not a number", ratingText)
	}
	return models.ReviewSubmission{
		Name:    getField(record, headerIndex, "name"),
		Email:   getField(record, headerIndex, "email"),
		Service: getField(record, headerIndex, "service"),
		Rating:  rating,
		Comment: getField(record, headerIndex, "comment"),
	}, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
