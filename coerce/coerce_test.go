package coerce_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/relmap/relmap/coerce"
	"github.com/relmap/relmap/schema"
)

type Sample struct {
	ID       int `relmap:"id;autoIncrement"`
	Count    *int
	Amount   float64
	Raw      string `relmap:"type:numeric"`
	Label    string
	Born     time.Time
	Due      string `relmap:"type:date"`
	Active   bool   `relmap:"bool:S,N"`
	Enabled  bool
	Nickname sql.NullString
	Hits     uint
}

func sampleField(t *testing.T, name string) *schema.Field {
	t.Helper()
	s, err := schema.Parse(&Sample{}, nil, nil)
	require.NoError(t, err)
	field := s.LookUpField(name)
	require.NotNil(t, field, name)
	return field
}

func TestToSQLLiteral(t *testing.T) {
	count := 3
	var missing *int
	born := time.Date(2012, 1, 1, 15, 4, 5, 0, time.UTC)

	checks := []struct {
		field    string
		value    interface{}
		expected string
	}{
		{"id", 1, "1"},
		{"count", &count, "3"},
		{"count", missing, "null"},
		{"amount", 12.5, "12.5"},
		{"amount", float64(12), "12"},
		{"amount", nil, "null"},
		{"raw", "54,5", "54.5"},
		{"raw", "54.5", "54.5"},
		{"raw", "-3", "'-3'"},
		{"raw", "1e5", "'1e5'"},
		{"raw", "1.234,5", "'1.234,5'"},
		{"hits", uint(8), "8"},
		{"label", "Mary", "'Mary'"},
		{"label", "O'Brien", "'O'Brien'"},
		{"label", "", "''"},
		{"born", born, "'2012-01-01'"},
		{"due", "2012-01-01", "'2012-01-01'"},
		{"due", "31/12/2012", "'2012-12-31'"},
		{"due", "31/12/12", "'2012-12-31'"},
		{"due", "", "null"},
		{"active", true, "'S'"},
		{"active", false, "'N'"},
		{"enabled", true, "'true'"},
		{"nickname", sql.NullString{}, "null"},
		{"nickname", sql.NullString{String: "jo", Valid: true}, "'jo'"},
		{"label", 42, "'42'"},
	}

	for _, check := range checks {
		literal, err := coerce.ToSQLLiteral(sampleField(t, check.field), check.value)
		if assert.NoError(t, err, check.field) {
			assert.Equal(t, check.expected, literal.String(), "%v: %#v", check.field, check.value)
		}
	}
}

func TestToSQLLiteralNullForAnyKind(t *testing.T) {
	s, err := schema.Parse(&Sample{}, nil, nil)
	require.NoError(t, err)

	for _, field := range s.Fields {
		literal, err := coerce.ToSQLLiteral(field, nil)
		assert.NoError(t, err)
		assert.Equal(t, coerce.Null, literal, field.Name)
		assert.False(t, literal.Quoted)
	}
}

func TestToSQLLiteralInvalidDate(t *testing.T) {
	for _, value := range []string{"2012/01/01", "1-1-2012", "31/02/2012", "tomorrow"} {
		literal, err := coerce.ToSQLLiteral(sampleField(t, "due"), value)
		assert.ErrorIs(t, err, coerce.ErrInvalidDateFormat, value)
		assert.Equal(t, "null", literal.String())
	}
}

func TestNumericCoercionIsIdempotent(t *testing.T) {
	field := sampleField(t, "raw")
	for _, value := range []string{"0", "7", "54,5", "12.50", "1000"} {
		first, err := coerce.ToSQLLiteral(field, value)
		require.NoError(t, err)
		second, err := coerce.ToSQLLiteral(field, first.Text)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.NotContains(t, second.Text, ",")
	}
}

func TestDateRoundTrip(t *testing.T) {
	field := sampleField(t, "born")
	for _, day := range []time.Time{
		time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(0, 2, 29, 0, 0, 0, 0, time.UTC),
	} {
		literal, err := coerce.ToSQLLiteral(field, day)
		require.NoError(t, err)

		parsed, err := coerce.ParseDate(literal.Text)
		require.NoError(t, err)
		assert.Equal(t, day.Format(coerce.SQLDateLayout), parsed.Format(coerce.SQLDateLayout))
	}

	for text, expected := range map[string]string{
		"01/01/0000": "'0000-01-01'",
		"0000-05-05": "'0000-05-05'",
		"00/05/0000": "null",
	} {
		literal, err := coerce.ToSQLLiteral(field, text)
		assert.Equal(t, expected, literal.String(), text)
		if expected == "null" {
			assert.ErrorIs(t, err, coerce.ErrInvalidDateFormat)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestToDisplayValue(t *testing.T) {
	c := coerce.New(coerce.Formats{})
	born := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)

	checks := []struct {
		field    string
		value    interface{}
		expected string
	}{
		{"born", born, "01/01/2012"},
		{"due", "2012-03-04", "04/03/2012"},
		{"amount", 1234.5, "1.234,50"},
		{"amount", 0.0, "0,00"},
		{"amount", -3.5, "-3,50"},
		{"amount", 1.5e3, "1.500,00"},
		{"amount", float32(2.25), "2,25"},
		{"amount", nil, ""},
		{"raw", "12,5", "12,50"},
		{"raw", "-3", "-3"},
		{"id", 1234, "1234"},
		{"label", "Mary", "Mary"},
		{"active", true, "S"},
		{"enabled", false, "false"},
		{"nickname", sql.NullString{}, ""},
	}

	for _, check := range checks {
		got, err := c.ToDisplayValue(sampleField(t, check.field), check.value)
		if assert.NoError(t, err, check.field) {
			assert.Equal(t, check.expected, got, "%v: %#v", check.field, check.value)
		}
	}

	_, err := c.ToDisplayValue(sampleField(t, "due"), "yesterday")
	assert.ErrorIs(t, err, coerce.ErrInvalidDateFormat)
}

func TestFormatsWithLocale(t *testing.T) {
	c := coerce.New(coerce.Formats{DateLayout: coerce.Layout("yyyy/MM/dd"), Locale: language.AmericanEnglish, FractionDigits: 3})

	got, err := c.FormatNumber("1234,5")
	require.NoError(t, err)
	assert.Equal(t, "1,234.500", got)
	assert.Equal(t, "2012/01/31", c.FormatDate(time.Date(2012, 1, 31, 0, 0, 0, 0, time.UTC)))

	_, err = c.FormatNumber("12a")
	assert.ErrorIs(t, err, coerce.ErrInvalidNumberFormat)
}

func TestFromString(t *testing.T) {
	c := coerce.New(coerce.DefaultFormats)

	checks := []struct {
		field    string
		text     string
		expected interface{}
	}{
		{"id", "42", int64(42)},
		{"hits", " 8 ", uint64(8)},
		{"amount", "1.234,50", 1234.5},
		{"amount", "12.5", 12.5},
		{"amount", "", nil},
		{"born", "31/01/2012", time.Date(2012, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"due", "31/01/2012", "2012-01-31"},
		{"active", "S", true},
		{"active", "N", false},
		{"enabled", "on", true},
		{"enabled", "false", false},
		{"label", "Mary", "Mary"},
	}

	for _, check := range checks {
		got, err := c.FromString(sampleField(t, check.field), check.text)
		if assert.NoError(t, err, check.field) {
			assert.Equal(t, check.expected, got, "%v: %q", check.field, check.text)
		}
	}

	_, err := c.FromString(sampleField(t, "id"), "4,5")
	assert.ErrorIs(t, err, coerce.ErrInvalidNumberFormat)
	_, err = c.FromString(sampleField(t, "born"), "2012")
	assert.ErrorIs(t, err, coerce.ErrInvalidDateFormat)
	_, err = c.FromString(sampleField(t, "enabled"), "maybe")
	assert.Error(t, err)
}

func TestPredicates(t *testing.T) {
	for s, valid := range map[string]bool{"1": true, "54,5": true, "12.50": true, "-1": false, "1e3": false, "1.000,5": false, "": false, ".5": false} {
		assert.Equal(t, valid, coerce.IsValidNumber(s), s)
	}

	for s, valid := range map[string]bool{"01/01/2012": true, "01/01/12": true, "2012-01-01": true, "2012-1-1": false, "1/1/2012": false, "": false} {
		assert.Equal(t, valid, coerce.IsValidDate(s), s)
	}

	assert.Equal(t, "02/01/2006", coerce.Layout("dd/MM/yyyy"))
	assert.Equal(t, "06-01-02 15:04:05", coerce.Layout("yy-MM-dd HH:mm:ss"))
}

func TestLiteralString(t *testing.T) {
	assert.Equal(t, "null", coerce.Null.String())
	assert.Equal(t, "'x'", coerce.Literal{Text: "x", Quoted: true}.String())
	assert.Equal(t, "1", coerce.Literal{Text: "1"}.String())
}
