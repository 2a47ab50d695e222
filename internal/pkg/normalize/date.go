package normalize

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearFirstDate = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dayFirstDate  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)

	separatorReplacer = strings.NewReplacer("/", "-", ".", "-")
)

// Date parses a free-text calendar date.
//
// Accepted shapes after replacing "/" and "." with "-":
//
//	YYYY-M-D  year, month, day
//	D-M-YYYY  day, month, year
//
// Month-first input such as "03-25-2024" is not supported: a leading field of
// 1-2 digits is always the day. Unrecognised or impossible dates return false.
func Date(raw string) (time.Time, bool) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return time.Time{}, false
	}
	s := separatorReplacer.Replace(input)

	var year, month, day int
	if p := yearFirstDate.FindStringSubmatch(s); p != nil {
		year, month, day = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else if p := dayFirstDate.FindStringSubmatch(s); p != nil {
		day, month, year = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// FlexDate is a JSON field holding a free-text date. Unparsable input leaves
// Valid false rather than failing the decode; Input keeps the text received.
type FlexDate struct {
	Time  time.Time
	Valid bool
	Input string
}

// UnmarshalJSON accepts a string, a number or null.
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	d.Time, d.Valid, d.Input = time.Time{}, false, ""
	raw, err := decodeScalar(data)
	if err != nil || raw == nil {
		return nil
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	d.Input = s
	d.Time, d.Valid = Date(s)
	return nil
}

// Discarded reports whether a date was sent but could not be parsed.
func (d FlexDate) Discarded() bool {
	return !d.Valid && strings.TrimSpace(d.Input) != ""
}

// NullTime converts the date into a nullable SQL value.
func (d FlexDate) NullTime() sql.NullTime {
	return sql.NullTime{Time: d.Time, Valid: d.Valid}
}

// NewFlexDate parses s the same way a JSON payload would be.
func NewFlexDate(s string) FlexDate {
	t, ok := Date(s)
	return FlexDate{Time: t, Valid: ok, Input: s}
}
