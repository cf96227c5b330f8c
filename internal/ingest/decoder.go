package ingest

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Required header columns. The decoder refuses the stream before
// yielding any row when either is absent.
const (
	ColumnSKU  = "sku"
	ColumnName = "name"
)

// Decoder lazily turns a gzip-compressed CSV byte stream into raw field
// maps keyed by the header row. It is single-pass and non-restartable;
// any failure is unrecoverable for the current stream.
type Decoder struct {
	gz     *gzip.Reader
	csv    *csv.Reader
	header []string
}

// NewDecoder validates the gzip framing and the CSV header. A bad gzip
// stream yields ErrInputFormat, a header missing required columns yields
// ErrSchema naming them.
func NewDecoder(r io.Reader) (*Decoder, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}

	cr := csv.NewReader(gz)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file, no header row", ErrSchema)
		}
		return nil, classifyReadError(err)
	}

	cols := make(map[string]bool, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		names[i] = name
		cols[name] = true
	}

	var missing []string
	for _, required := range []string{ColumnSKU, ColumnName} {
		if !cols[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(missing, ", "))
	}

	return &Decoder{gz: gz, csv: cr, header: names}, nil
}

// Header returns the trimmed column names of the header row.
func (d *Decoder) Header() []string {
	return d.header
}

// Next yields the next row as a column→value map, io.EOF at end of
// stream. A malformed row yields ErrParse; rows already yielded remain
// valid. Decompression failures mid-stream yield ErrInputFormat.
func (d *Decoder) Next() (map[string]string, error) {
	record, err := d.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, classifyReadError(err)
	}

	row := make(map[string]string, len(d.header))
	for i, col := range d.header {
		if i < len(record) {
			row[col] = record[i]
		}
	}
	return row, nil
}

// Close releases the gzip reader. It does not close the underlying
// source.
func (d *Decoder) Close() error {
	return d.gz.Close()
}

func classifyReadError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	// Anything else surfacing through the reader is corrupt input:
	// truncated gzip stream, checksum mismatch, encoding garbage.
	return fmt.Errorf("%w: %v", ErrInputFormat, err)
}
