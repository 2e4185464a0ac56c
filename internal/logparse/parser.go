// Package logparse turns Combined Log Format lines into typed records.
package logparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/tinytelemetry/loggrowth/internal/model"
	"github.com/tinytelemetry/loggrowth/internal/timestamp"
)

const (
	// FieldCount is the number of space separated fields a masked line must have.
	FieldCount = 9

	// MaskRune replaces whitespace inside bracketed and quoted regions.
	MaskRune = '%'

	// FallbackStatus is substituted when the status field is not a valid code.
	FallbackStatus = 404

	unknownDescription = "Unknown"
)

var (
	// ErrFieldCount is returned for lines that do not split into FieldCount fields.
	ErrFieldCount = errors.New("logparse: wrong field count")
	// ErrTimestamp is returned for lines whose time field cannot be decoded.
	ErrTimestamp = errors.New("logparse: bad timestamp")
)

// Warning describes a field that was replaced by a default while parsing.
type Warning struct {
	Field   string
	Value   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Field, w.Value, w.Message)
}

// Parser parses access log lines against a status code table.
type Parser struct {
	codes model.StatusLookup
}

// NewParser creates a parser that resolves status descriptions from codes.
func NewParser(codes model.StatusLookup) *Parser {
	return &Parser{codes: codes}
}

// Mask rewrites the line so it can be split on spaces: every whitespace rune
// inside a region delimited by '[', ']' or '"' becomes MaskRune. Any of the
// three delimiters toggles the region.
func Mask(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	inBlock := false
	for _, r := range line {
		switch {
		case r == '[' || r == ']' || r == '"':
			inBlock = !inBlock
		case inBlock && unicode.IsSpace(r):
			r = MaskRune
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseLine parses one log line. A malformed line yields a nil record and an
// error; field level problems yield a record with defaults and warnings.
func (p *Parser) ParseLine(line string) (*model.Record, []Warning, error) {
	fields := strings.Split(Mask(strings.TrimRight(line, "\r\n")), " ")
	if len(fields) != FieldCount {
		return nil, nil, fmt.Errorf("%w: got %d", ErrFieldCount, len(fields))
	}

	date, err := timestamp.Decode(fields[3])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTimestamp, err)
	}

	var warnings []Warning
	status, statusWarn := p.parseStatus(fields[5])
	warnings = append(warnings, statusWarn...)

	size, ok := parseSize(fields[6])
	if !ok {
		warnings = append(warnings, Warning{Field: "size", Value: fields[6], Message: "not a byte count, using 0"})
	}

	record := &model.Record{
		IP:       fields[0],
		ClientID: fields[1],
		UserID:   fields[2],
		TimeRaw:  fields[3],
		Request:  fields[4],
		Status:   status,
		Size:     size,
		Date:     date,
		Epoch:    timestamp.Epoch(date),
	}
	return record, warnings, nil
}

func (p *Parser) parseStatus(field string) (model.Status, []Warning) {
	var warnings []Warning

	code, err := strconv.Atoi(field)
	if err != nil || code < 100 || code > 599 {
		warnings = append(warnings, Warning{
			Field:   "status",
			Value:   field,
			Message: fmt.Sprintf("not a status code, using %d", FallbackStatus),
		})
		code = FallbackStatus
	}

	desc, ok := p.lookup(code)
	if !ok {
		warnings = append(warnings, Warning{
			Field:   "status",
			Value:   strconv.Itoa(code),
			Message: "code missing from status table",
		})
		desc = unknownDescription
	}
	return model.Status{Code: code, Description: desc}, warnings
}

func (p *Parser) lookup(code int) (string, bool) {
	if p.codes == nil {
		return "", false
	}
	return p.codes.Lookup(code)
}

// parseSize converts a byte count into kilobytes.
func parseSize(field string) (float64, bool) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v / 1000, true
}
