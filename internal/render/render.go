// Package render turns a parsed record sequence into its output forms:
// compact JSON, pretty JSON, an aligned table, or delimited text.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/iancoleman/strcase"
	"github.com/tidwall/pretty"

	"github.com/iotux/log-parser/internal/errors"
	"github.com/iotux/log-parser/internal/models"
)

// Format names accepted by Render.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatTable  = "table"
	FormatCSV    = "csv"
)

// Options controls rendering.
type Options struct {
	// Format selects the output form: json, pretty, table, or csv.
	Format string
	// Delimiter is the field separator for csv output. Defaults to ",".
	Delimiter string
	// HeaderCase rewrites table/csv headers: original, snake, camel,
	// or pascal.
	HeaderCase string
}

// Renderer renders record sequences according to fixed Options.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	return &Renderer{opts: opts}
}

// Render dispatches on the configured format.
func (r *Renderer) Render(records []*models.Record) (string, error) {
	switch r.opts.Format {
	case FormatJSON:
		return r.JSON(records)
	case FormatPretty:
		return r.PrettyJSON(records)
	case FormatTable:
		return r.Table(records)
	case FormatCSV:
		return r.CSV(records)
	default:
		return "", errors.NewRenderError(
			fmt.Sprintf("unknown output format '%s'", r.opts.Format),
			errors.ErrUnknownFormat,
		)
	}
}

// JSON renders the records as a compact JSON array of ordered objects.
func (r *Renderer) JSON(records []*models.Record) (string, error) {
	encoded, err := encodeArray(records)
	if err != nil {
		return "", err
	}
	return string(pretty.Ugly(encoded)), nil
}

// PrettyJSON renders the records as an indented JSON array.
func (r *Renderer) PrettyJSON(records []*models.Record) (string, error) {
	encoded, err := encodeArray(records)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(pretty.Pretty(encoded)), "\n"), nil
}

// Table renders an aligned text table. Columns are the union of keys
// across all records in first-appearance order; missing cells are empty.
func (r *Renderer) Table(records []*models.Record) (string, error) {
	columns := collectColumns(records)
	if len(columns) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = r.header(column)
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, record := range records {
		cells := make([]string, len(columns))
		for i, column := range columns {
			if value, ok := record.Get(column); ok {
				cells[i] = cellString(value)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return "", errors.NewRenderError("failed to flush table", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// CSV renders delimited text with a header row. Only textual and
// composite fields are subject to quoting; numbers and booleans are
// written bare.
func (r *Renderer) CSV(records []*models.Record) (string, error) {
	columns := collectColumns(records)
	if len(columns) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if delim := []rune(r.opts.Delimiter); len(delim) > 0 {
		w.Comma = delim[0]
	}

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = r.header(column)
	}
	if err := w.Write(headers); err != nil {
		return "", errors.NewRenderError("failed to write csv header", err)
	}

	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			if value, ok := record.Get(column); ok {
				row[i] = cellString(value)
			}
		}
		if err := w.Write(row); err != nil {
			return "", errors.NewRenderError("failed to write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.NewRenderError("failed to flush csv", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (r *Renderer) header(column string) string {
	switch r.opts.HeaderCase {
	case "snake":
		return strcase.ToSnake(column)
	case "camel":
		return strcase.ToLowerCamel(column)
	case "pascal":
		return strcase.ToCamel(column)
	default:
		return column
	}
}

// collectColumns returns the union of keys across records, ordered by
// first appearance.
func collectColumns(records []*models.Record) []string {
	var columns []string
	seen := make(map[string]struct{})
	for _, record := range records {
		for _, key := range record.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}

// cellString renders one value for a table or csv cell. Scalars print
// bare; nested objects and arrays print as compact JSON.
func cellString(v models.Value) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		encoded, err := models.MarshalValue(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

func encodeArray(records []*models.Record) ([]byte, error) {
	if records == nil {
		records = []*models.Record{}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return nil, errors.NewRenderError("failed to encode records", err)
	}
	return encoded, nil
}
