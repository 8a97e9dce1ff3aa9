package coerce

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"

	"github.com/relmap/relmap/schema"
)

var (
	// ErrInvalidDateFormat date text matches none of dd/MM/yyyy, dd/MM/yy or yyyy-MM-dd
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrInvalidNumberFormat number text is not digits with an optional . or , fraction
	ErrInvalidNumberFormat = schema.ErrInvalidNumberFormat
)

// SQLDateLayout layout of date literals
const SQLDateLayout = "2006-01-02"

var (
	numberRegexp = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	dateShapes   = []struct {
		pattern *regexp.Regexp
		layout  string
	}{
		{regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), "02/01/2006"},
		{regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`), "02/01/06"},
		{regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), SQLDateLayout},
	}
	dateConfig = &now.Config{
		TimeLocation: time.UTC,
		TimeFormats:  []string{"02/01/2006", "02/01/06", SQLDateLayout},
	}
	layoutReplacer = strings.NewReplacer(
		"yyyy", "2006", "yy", "06",
		"MM", "01", "dd", "02",
		"HH", "15", "mm", "04", "ss", "05",
	)
)

// IsValidNumber reports whether s is unsigned digits with an optional fraction; signs,
// exponents and thousands separators are rejected
func IsValidNumber(s string) bool {
	return numberRegexp.MatchString(s)
}

// IsValidDate reports whether s has the dd/MM/yyyy, dd/MM/yy or yyyy-MM-dd shape
func IsValidDate(s string) bool {
	_, ok := dateLayout(s)
	return ok
}

func dateLayout(s string) (string, bool) {
	for _, shape := range dateShapes {
		if shape.pattern.MatchString(s) {
			return shape.layout, true
		}
	}
	return "", false
}

// ParseNumber parses trimmed number text, accepting a comma decimal separator
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !IsValidNumber(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumberFormat, s)
	}

	f, err := strconv.ParseFloat(normalizeNumber(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidNumberFormat, s, err)
	}
	return f, nil
}

func normalizeNumber(s string) string {
	return strings.Replace(s, ",", ".", 1)
}

// ParseDate parses date text in one of the accepted shapes as a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout, ok := dateLayout(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}

	t, err := dateConfig.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDateFormat, s, err)
	}

	// now fills zero components, such as year 0000, from the current time
	if t.Format(layout) != s {
		if t, err = time.ParseInLocation(layout, s, time.UTC); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDateFormat, s, err)
		}
	}
	return t, nil
}

// ReformatDate parses s and formats it with the Go layout
func ReformatDate(s, layout string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Layout converts a dd/MM/yyyy style pattern into a Go time layout
func Layout(pattern string) string {
	return layoutReplacer.Replace(pattern)
}
