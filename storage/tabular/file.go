package tabular

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/markbook/core"
)

const (
	DefaultWriteAttempts = 3
	DefaultRetryDelay    = time.Second
)

var persistFunc = persist // mockable

// File is a Store keeping a single table in an .xlsx workbook.
type File struct {
	path     string
	attempts int
	delay    time.Duration
	logger   core.Logger

	mutex sync.RWMutex
}

var _ Store = (*File)(nil)

type Option func(*File)

// WithRetry bounds how many times a write is attempted while the file is locked, and the pause between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *File) {
		if attempts > 0 {
			f.attempts = attempts
		}
		if delay >= 0 {
			f.delay = delay
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFile(path string, opts ...Option) *File {
	f := &File{
		path:     filepath.Clean(path),
		attempts: DefaultWriteAttempts,
		delay:    DefaultRetryDelay,
		logger:   core.NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) Location() string { return f.path }

// Exists reports whether the workbook is present on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *File) ReadTable(ctx context.Context, name string) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, nil
		}
		return Table{}, core.NewStoreError("read", f.path, err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer wb.Close()

	table, err := readSheet(wb, name)
	if err != nil {
		return Table{}, core.NewStoreError("read", f.path, err)
	}
	return table, nil
}

// WriteTable rewrites the whole file. Lock contention is retried with a pause that honours ctx.
func (f *File) WriteTable(ctx context.Context, table Table, name string) error {
	if name == "" {
		name = DefaultSheet
	}
	data, err := render(table, name)
	if err != nil {
		return core.NewStoreError("write", f.path, err)
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err = f.retry(ctx, func() error { return persistFunc(f.path, data) }); err != nil {
		return core.NewStoreError("write", f.path, err)
	}
	return nil
}

func (f *File) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err = op(); err == nil || !isBusy(err) {
			return err
		}
		if attempt == f.attempts {
			break
		}
		f.logger.Warn(
			fmt.Sprintf("file busy, retrying... (%d left)", f.attempts-attempt),
			map[string]interface{}{"path": f.path}, err,
		)

		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(ctx.Err(), "waiting for file lock")
		case <-timer.C:
		}
	}
	return errors.Wrapf(err, "file still busy after %d attempts", f.attempts)
}

// persist writes data next to path then renames it over path.
func persist(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func render(table Table, sheet string) ([]byte, error) {
	wb := excelize.NewFile()
	//goland:noinspection GoUnhandledErrorResult
	defer wb.Close()

	if sheet != DefaultSheet {
		if err := wb.SetSheetName(DefaultSheet, sheet); err != nil {
			return nil, err
		}
	}

	cols := table.Columns()
	for c, col := range cols {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		if err = wb.SetCellStr(sheet, cell, col); err != nil {
			return nil, err
		}
	}
	for r, row := range table.Rows {
		for c, col := range cols {
			val, ok := row[col]
			if !ok || val == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err = wb.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readSheet(wb *excelize.File, name string) (Table, error) {
	sheet := name
	if idx, err := wb.GetSheetIndex(name); name == "" || err != nil || idx == -1 {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, nil
		}
		sheet = sheets[0]
	}

	raw, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, err
	}
	if len(raw) == 0 {
		return Table{}, nil
	}

	table := Table{Header: make([]string, 0, len(raw[0]))}
	for _, h := range raw[0] {
		table.Header = append(table.Header, strings.TrimSpace(h))
	}

	for r, cells := range raw[1:] {
		row := make(Row, len(cells))
		for c, s := range cells {
			if c >= len(table.Header) || table.Header[c] == "" || s == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return Table{}, err
			}
			typ, err := wb.GetCellType(sheet, axis)
			if err != nil {
				return Table{}, err
			}
			row[table.Header[c]] = cellValue(typ, s)
		}
		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

// cellValue converts a raw cell string into a typed value.
// Strings stay strings even when they look numeric.
func cellValue(typ excelize.CellType, s string) interface{} {
	switch typ {
	case excelize.CellTypeBool:
		return s == "1" || strings.EqualFold(s, "true")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeDate, excelize.CellTypeError:
		return s
	default:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return fl
		}
		return s
	}
}
