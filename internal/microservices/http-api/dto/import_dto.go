package dto

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"comicvault/internal/microservices/http-api/service"
)

var (
	ErrNoRows            = errors.New("no rows to import")
	ErrUnsupportedFormat = errors.New("unsupported file type, use .csv or .json")
)

// ImportRowDTO is one spreadsheet row. Keys may be snake_case (the template
// header) or camelCase. Rows carrying a _comment key are annotations.
type ImportRowDTO struct {
	Row     service.ImportRow
	Comment bool
}

func (d *ImportRowDTO) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	d.Comment = f.has("_comment")
	d.Row = rowFromFields(f)
	return nil
}

func rowFromFields(f fields) service.ImportRow {
	return service.ImportRow{
		Name:               f.pick("name", "title"),
		SeriesName:         f.pick("series_name", "seriesName", "series"),
		PublisherName:      f.pick("publisher_name", "publisherName", "publisher"),
		IssueNo:            f.pick("issue_no", "issueNo", "issue_number", "issue"),
		VariantDescription: f.pick("variant_description", "variantDescription", "variant"),
		CoverURL:           f.pick("cover_url", "coverUrl"),
		ReleaseDate:        f.pick("release_date", "releaseDate"),
		UPC:                f.pick("upc", "UPC"),
		LocgLink:           f.pick("locg_link", "locgLink"),
	}
}

// ImportRowFromMap builds a row from a CSV record keyed by header name.
func ImportRowFromMap(m map[string]string) service.ImportRow {
	f := make(fields, len(m))
	for k, v := range m {
		f[strings.TrimSpace(k)] = LooseString(v)
	}
	return rowFromFields(f)
}

type ImportRequest struct {
	Rows           []ImportRowDTO `json:"rows" binding:"required"`
	CollectionType string         `json:"collectionType"`
}

// ServiceRows drops comment rows and returns an error if nothing is left.
func (r ImportRequest) ServiceRows() ([]service.ImportRow, error) {
	return dataRows(r.Rows)
}

func dataRows(in []ImportRowDTO) ([]service.ImportRow, error) {
	rows := make([]service.ImportRow, 0, len(in))
	for _, d := range in {
		if d.Comment {
			continue
		}
		rows = append(rows, d.Row)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// DecodeImportFile reads CSV or JSON rows, chosen by the file extension.
func DecodeImportFile(r io.Reader, filename string) ([]service.ImportRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeImportCSV(r)
	case ".json":
		return DecodeImportJSON(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DecodeImportJSON reads a JSON array of row objects.
func DecodeImportJSON(r io.Reader) ([]service.ImportRow, error) {
	var in []ImportRowDTO
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("invalid JSON, expected an array of rows: %w", err)
	}
	return dataRows(in)
}

// DecodeImportCSV reads a CSV file whose first record is the header.
// Blank lines are skipped.
func DecodeImportCSV(r io.Reader) ([]service.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff")
	}

	var rows []service.ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		m := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if i < len(record) {
				m[col] = record[i]
				if strings.TrimSpace(record[i]) != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}
		rows = append(rows, ImportRowFromMap(m))
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// EncodeTemplateCSV writes the import template as CSV.
func EncodeTemplateCSV(w io.Writer, t *service.ImportTemplate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
