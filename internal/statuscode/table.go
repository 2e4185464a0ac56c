// Package statuscode loads the HTTP status code table used by the parser.
package statuscode

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed http_codes.csv
var defaultCSV string

// ErrEmptyTable is returned when a source yields no usable rows.
var ErrEmptyTable = errors.New("statuscode: no status codes found")

// Table maps numeric HTTP status codes to descriptions.
// It is built once and read-only afterwards.
type Table struct {
	descriptions map[int]string
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(strings.NewReader(defaultCSV))
		if err != nil {
			panic(fmt.Sprintf("statuscode: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Load reads a CSV file, or every regular file in a directory of CSVs,
// into one table. Later files override earlier codes.
func Load(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("statuscode: %w", err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("statuscode: read dir: %w", err)
	}
	merged := &Table{descriptions: make(map[int]string)}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		t, err := loadFile(filepath.Join(path, entry.Name()))
		if err != nil {
			if errors.Is(err, ErrEmptyTable) {
				continue
			}
			return nil, err
		}
		for code, desc := range t.descriptions {
			merged.descriptions[code] = desc
		}
	}
	if len(merged.descriptions) == 0 {
		return nil, ErrEmptyTable
	}
	return merged, nil
}

func loadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("statuscode: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("statuscode: %s: %w", path, err)
	}
	return t, nil
}

// Parse reads `code,description` rows. Rows whose code is not numeric, such as
// a header, are skipped. Descriptions may themselves contain commas.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	t := &Table{descriptions: make(map[int]string)}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		t.descriptions[code] = strings.TrimSpace(strings.Join(row[1:], ","))
	}
	if len(t.descriptions) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// Lookup returns the description for code.
func (t *Table) Lookup(code int) (string, bool) {
	desc, ok := t.descriptions[code]
	return desc, ok
}

// Len returns the number of known codes.
func (t *Table) Len() int {
	return len(t.descriptions)
}

// Codes returns the known codes in ascending order.
func (t *Table) Codes() []int {
	codes := make([]int, 0, len(t.descriptions))
	for code := range t.descriptions {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
