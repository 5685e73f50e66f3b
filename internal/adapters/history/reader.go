package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadCSV parses a CSV export. Rows may have differing lengths; reading
// stops at the end marker so anything after it is never inspected.
func ReadCSV(ctx context.Context, r io.Reader, opts ...Option) (*History, error) {
	p := newParser(opts)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyHistory
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if err := p.header(header); err != nil {
		return nil, err
	}

	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		done, err := p.row(row, cells)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return p.h, nil
}

// ReadXLSX parses an Excel workbook, using the configured sheet or the
// first one.
func ReadXLSX(ctx context.Context, r io.Reader, opts ...Option) (*History, error) {
	p := newParser(opts)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyHistory
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrRead, sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.parse(rows)
}

// Load reads a history file, choosing the format by extension.
func Load(ctx context.Context, path string, opts ...Option) (*History, error) {
	var read func(context.Context, io.Reader, ...Option) (*History, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		read = ReadCSV
	case ".xlsx", ".xlsm":
		read = ReadXLSX
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()

	return read(ctx, f, opts...)
}
