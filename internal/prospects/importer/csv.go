// Package importer loads prospect batches from CSV uploads.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shoreline_portal_backend/internal/prospects/domain"
	"shoreline_portal_backend/internal/prospects/repository"
	"shoreline_portal_backend/platform/apperr"
	"shoreline_portal_backend/platform/logger"
	"shoreline_portal_backend/platform/phone"
	"shoreline_portal_backend/platform/validator"
)

const sourceImport = "import"

// expectedColumns is the required header, in order. Optional fields may be
// left empty per row but the columns must be present.
var expectedColumns = []string{
	"name", "email", "phone", "city", "region", "country",
	"latitude", "longitude", "population", "notes",
}

// RowError reports why a single CSV line was rejected.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarizes an import run.
type Report struct {
	Processed         int        `json:"processed"`
	Imported          int        `json:"imported"`
	SkippedDuplicates int        `json:"skippedDuplicates"`
	Errors            []RowError `json:"errors"`
}

// Repository is the slice of prospect storage the importer needs.
type Repository interface {
	repository.ProspectReader
	repository.ProspectWriter
}

// Importer parses and loads prospect CSV files.
type Importer struct {
	repo     Repository
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new CSV importer.
func New(repo Repository, validate *validator.Validator, log *logger.Logger) *Importer {
	return &Importer{repo: repo, validate: validate, log: log}
}

// Row is one prospect to import, either parsed from a CSV line or passed
// directly (e.g. accepted discovery candidates).
type Row struct {
	Name       string `validate:"required,min=2"`
	Email      string `validate:"required,email"`
	Phone      *string
	City       string `validate:"required"`
	Region     *string
	Country    string `validate:"required"`
	Latitude   *float64
	Longitude  *float64
	Population *int
	Notes      *string
}

// Import reads the CSV stream and creates a prospect per valid, non-duplicate
// row. Malformed rows are collected in the report; they never abort the run.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Report{}, apperr.BadRequest("empty or unreadable CSV file")
	}
	if err := validateHeader(header); err != nil {
		return Report{}, err
	}

	var report Report
	line := 1
	for {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Processed++
			report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		report.Processed++
		row, err := parseRow(record)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		i.importRow(ctx, &report, line, row, sourceImport)
	}

	i.logReport("prospect import complete", report)
	return report, nil
}

// ImportRows inserts pre-parsed rows with the same validation and
// deduplication as the CSV path. Line numbers in the report refer to
// positions in the given slice, starting at 1.
func (i *Importer) ImportRows(ctx context.Context, rows []Row, source string) (Report, error) {
	var report Report
	for idx, row := range rows {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++
		i.importRow(ctx, &report, idx+1, row, source)
	}

	i.logReport("direct prospect import complete", report)
	return report, nil
}

func (i *Importer) importRow(ctx context.Context, report *Report, line int, row Row, source string) {
	if err := i.validate.Struct(row); err != nil {
		report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
		return
	}
	created, err := i.createIfNew(ctx, row, source)
	switch {
	case err != nil:
		report.Errors = append(report.Errors, RowError{Line: line, Message: err.Error()})
	case created:
		report.Imported++
	default:
		report.SkippedDuplicates++
	}
}

func (i *Importer) logReport(msg string, report Report) {
	i.log.Info(msg,
		"processed", report.Processed,
		"imported", report.Imported,
		"duplicates", report.SkippedDuplicates,
		"errors", len(report.Errors),
	)
}

func validateHeader(header []string) error {
	if len(header) != len(expectedColumns) {
		return apperr.BadRequest(fmt.Sprintf("expected %d columns, got %d", len(expectedColumns), len(header)))
	}
	for idx, want := range expectedColumns {
		if !strings.EqualFold(strings.TrimSpace(header[idx]), want) {
			return apperr.BadRequest(fmt.Sprintf("column %d must be %q, got %q", idx+1, want, header[idx]))
		}
	}
	return nil
}

func parseRow(record []string) (Row, error) {
	get := func(idx int) string { return strings.TrimSpace(record[idx]) }
	optional := func(idx int) *string {
		if v := get(idx); v != "" {
			return &v
		}
		return nil
	}

	row := Row{
		Name:    get(0),
		Email:   strings.ToLower(get(1)),
		City:    get(3),
		Region:  optional(4),
		Country: get(5),
		Notes:   optional(9),
	}

	if raw := get(2); raw != "" {
		normalized := phone.NormalizeE164ForRegion(raw, row.Country)
		row.Phone = &normalized
	}

	lat, lon := get(6), get(7)
	if (lat == "") != (lon == "") {
		return Row{}, fmt.Errorf("latitude and longitude must be provided together")
	}
	if lat != "" {
		latV, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid latitude %q", lat)
		}
		lonV, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid longitude %q", lon)
		}
		if latV < -90 || latV > 90 || lonV < -180 || lonV > 180 {
			return Row{}, fmt.Errorf("coordinates out of range")
		}
		row.Latitude, row.Longitude = &latV, &lonV
	}

	if pop := get(8); pop != "" {
		popV, err := strconv.Atoi(pop)
		if err != nil || popV < 0 {
			return Row{}, fmt.Errorf("invalid population %q", pop)
		}
		row.Population = &popV
	}

	return row, nil
}

func (i *Importer) createIfNew(ctx context.Context, row Row, source string) (bool, error) {
	_, err := i.repo.FindByIdentity(ctx,
		domain.NormalizeIdentity(row.Name), domain.NormalizeIdentity(row.City))
	if err == nil {
		return false, nil
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		return false, err
	}

	exists, err := i.repo.ExistsByEmail(ctx, row.Email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = i.repo.Create(ctx, repository.CreateProspectParams{
		Name:       row.Name,
		Email:      row.Email,
		Phone:      row.Phone,
		City:       row.City,
		Region:     row.Region,
		Country:    row.Country,
		Latitude:   row.Latitude,
		Longitude:  row.Longitude,
		Population: row.Population,
		Notes:      row.Notes,
		Source:     source,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
