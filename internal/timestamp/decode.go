// Package timestamp decodes Combined Log Format timestamps such as
// "[10/Oct/2023:13:55:36 +0000]" into calendar tuples and epoch seconds.
package timestamp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/loggrowth/internal/model"
)

// ErrMalformed is returned for timestamps that cannot be decoded.
var ErrMalformed = errors.New("timestamp: malformed")

var months = map[string]uint32{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// Decode converts a raw timestamp into a DateTuple. The raw text may have its
// inner whitespace masked to '%'. The zone offset is not applied: the wall
// clock is taken as UTC.
func Decode(raw string) (model.DateTuple, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ':' || r == '%' || r == ' '
	})
	if len(parts) < 6 {
		return model.DateTuple{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}

	month, ok := months[parts[1]]
	if !ok {
		return model.DateTuple{}, fmt.Errorf("%w: unknown month %q", ErrMalformed, parts[1])
	}

	day, err := parseField(strings.TrimLeft(parts[0], "["))
	if err != nil {
		return model.DateTuple{}, err
	}
	year, err := parseField(parts[2])
	if err != nil {
		return model.DateTuple{}, err
	}
	hour, err := parseField(parts[3])
	if err != nil {
		return model.DateTuple{}, err
	}
	minute, err := parseField(parts[4])
	if err != nil {
		return model.DateTuple{}, err
	}
	second, err := parseField(strings.TrimRight(parts[5], "]"))
	if err != nil {
		return model.DateTuple{}, err
	}

	d := model.DateTuple{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
	if !Valid(d) {
		return model.DateTuple{}, fmt.Errorf("%w: out of range %q", ErrMalformed, raw)
	}
	return d, nil
}

func parseField(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q", ErrMalformed, s)
	}
	return uint32(v), nil
}

// Valid reports whether every field of d lies in its calendar range.
func Valid(d model.DateTuple) bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Hour > 23 || d.Minute > 59 || d.Second > 59 {
		return false
	}
	t := toTime(d)
	return uint32(t.Year()) == d.Year && uint32(t.Month()) == d.Month && uint32(t.Day()) == d.Day
}

// Epoch returns the seconds since the Unix epoch for d read as UTC.
func Epoch(d model.DateTuple) int64 {
	return toTime(d).Unix()
}

func toTime(d model.DateTuple) time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day),
		int(d.Hour), int(d.Minute), int(d.Second), 0, time.UTC)
}
