package coerce

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/relmap/relmap/schema"
	"github.com/relmap/relmap/utils"
)

// Literal SQL text of one value; quoted literals render between single quotes with no
// escaping of embedded quotes
type Literal struct {
	Text   string
	Quoted bool
}

// Null the bare null keyword
var Null = Literal{Text: "null"}

func (l Literal) String() string {
	if l.Quoted {
		return "'" + l.Text + "'"
	}
	return l.Text
}

// Formats display formatting of dates and numbers
type Formats struct {
	// DateLayout Go layout of displayed dates
	DateLayout string
	Locale     language.Tag
	// FractionDigits digits after the decimal separator of displayed floats
	FractionDigits int
}

// DefaultFormats dd/MM/yyyy dates and pt-BR numbers with 2 fraction digits
var DefaultFormats = Formats{
	DateLayout:     "02/01/2006",
	Locale:         language.BrazilianPortuguese,
	FractionDigits: 2,
}

// Coercer converts field values to display text and back
type Coercer struct {
	Formats
	printer *message.Printer
}

// New returns a Coercer, zero members of formats take DefaultFormats values
func New(formats Formats) *Coercer {
	if formats.DateLayout == "" {
		formats.DateLayout = DefaultFormats.DateLayout
	}
	if formats.Locale == language.Und {
		formats.Locale = DefaultFormats.Locale
	}
	if formats.FractionDigits <= 0 {
		formats.FractionDigits = DefaultFormats.FractionDigits
	}
	return &Coercer{Formats: formats, printer: message.NewPrinter(formats.Locale)}
}

// indirect unwraps pointers and driver.Valuer values; ok is false for absent values
func indirect(value interface{}) (interface{}, bool) {
	for value != nil {
		if valuer, ok := value.(driver.Valuer); ok {
			if rv := reflect.ValueOf(valuer); rv.Kind() == reflect.Ptr && rv.IsNil() {
				return nil, false
			}
			v, err := valuer.Value()
			if err != nil || v == nil {
				return nil, false
			}
			return v, true
		}

		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Ptr {
			return value, true
		}
		if rv.IsNil() {
			return nil, false
		}
		value = rv.Elem().Interface()
	}
	return nil, false
}

func qualified(field *schema.Field) string {
	if field.Schema == nil {
		return field.Name
	}
	return field.Schema.Name + "." + field.Name
}

// ToSQLLiteral renders value of field as SQL literal text. Absent values are null,
// numeric fields holding number text are unquoted with a . decimal separator, date
// fields are quoted yyyy-MM-dd, anything else is its quoted string form.
// Errors come with the Null literal.
func ToSQLLiteral(field *schema.Field, value interface{}) (Literal, error) {
	value, ok := indirect(value)
	if !ok {
		return Null, nil
	}

	if field.IsNumeric() {
		if s := utils.ToString(value); IsValidNumber(s) {
			return Literal{Text: normalizeNumber(s)}, nil
		}
	}

	if field.DataType == schema.Time {
		switch v := value.(type) {
		case time.Time:
			return Literal{Text: v.Format(SQLDateLayout), Quoted: true}, nil
		case string:
			if strings.TrimSpace(v) == "" {
				return Null, nil
			}
			text, err := ReformatDate(v, SQLDateLayout)
			if err != nil {
				return Null, fmt.Errorf("%v: %w", qualified(field), err)
			}
			return Literal{Text: text, Quoted: true}, nil
		}
	}

	if b, ok := value.(bool); ok && field.Boolean != nil {
		return Literal{Text: field.Boolean.Text(b), Quoted: true}, nil
	}

	return Literal{Text: utils.ToString(value), Quoted: true}, nil
}

// ToDisplayValue renders value of field for presentation: dates with DateLayout, floats
// holding number text with locale grouping and decimal separators, absent values as ""
func (c *Coercer) ToDisplayValue(field *schema.Field, value interface{}) (string, error) {
	value, ok := indirect(value)
	if !ok {
		return "", nil
	}

	switch field.DataType {
	case schema.Time:
		switch v := value.(type) {
		case time.Time:
			return v.Format(c.DateLayout), nil
		case string:
			if strings.TrimSpace(v) == "" {
				return "", nil
			}
			text, err := ReformatDate(v, c.DateLayout)
			if err != nil {
				return "", fmt.Errorf("%v: %w", qualified(field), err)
			}
			return text, nil
		}
	case schema.Float:
		if f, ok := numeric(value); ok {
			return c.formatFloat(f), nil
		}
		if s := utils.ToString(value); IsValidNumber(s) {
			return c.FormatNumber(s)
		}
	case schema.Bool:
		if b, ok := value.(bool); ok && field.Boolean != nil {
			return field.Boolean.Text(b), nil
		}
	}

	return utils.ToString(value), nil
}

// FormatNumber formats number text with the locale separators and FractionDigits
func (c *Coercer) FormatNumber(s string) (string, error) {
	f, err := ParseNumber(s)
	if err != nil {
		return "", err
	}
	return c.formatFloat(f), nil
}

func (c *Coercer) formatFloat(f float64) string {
	return c.printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(c.FractionDigits),
		number.MaxFractionDigits(c.FractionDigits),
	))
}

// numeric returns Go integer and floating-point values as float64
func numeric(value interface{}) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// FormatDate formats t with DateLayout
func (c *Coercer) FormatDate(t time.Time) string {
	return t.Format(c.DateLayout)
}

// FromString converts submitted text into a value of field's Go type, blank text is absent.
// Numbers accept the locale decimal separator, dates any accepted date shape.
func (c *Coercer) FromString(field *schema.Field, s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	wrap := func(err error) error {
		return fmt.Errorf("%v: %w", qualified(field), err)
	}

	switch field.DataType {
	case schema.Time:
		t, err := ParseDate(s)
		if err != nil {
			return nil, wrap(err)
		}
		if field.IndirectFieldType.Kind() == reflect.String {
			return t.Format(SQLDateLayout), nil
		}
		return t, nil
	case schema.Int:
		if _, err := ParseNumber(s); err != nil {
			return nil, wrap(err)
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, wrap(fmt.Errorf("%w: %q is not an integer", ErrInvalidNumberFormat, s))
		}
		return i, nil
	case schema.Uint:
		if _, err := ParseNumber(s); err != nil {
			return nil, wrap(err)
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, wrap(fmt.Errorf("%w: %q is not an integer", ErrInvalidNumberFormat, s))
		}
		return u, nil
	case schema.Float:
		f, err := ParseNumber(c.delocalize(s))
		if err != nil {
			return nil, wrap(err)
		}
		return f, nil
	case schema.Bool:
		if field.Boolean != nil {
			switch s {
			case field.Boolean.True:
				return true, nil
			case field.Boolean.False:
				return false, nil
			}
		}
		if strings.EqualFold(s, "on") {
			return true, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, wrap(err)
		}
		return b, nil
	}

	return s, nil
}

// delocalize drops the locale grouping separator so "1.234,50" parses in pt-BR
func (c *Coercer) delocalize(s string) string {
	group := c.printer.Sprint(number.Decimal(1000))
	if len(group) == 5 && !IsValidNumber(s) {
		return strings.ReplaceAll(s, group[1:2], "")
	}
	return s
}
