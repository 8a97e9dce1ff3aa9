package relmap

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/relmap/relmap/clause"
	"github.com/relmap/relmap/coerce"
	"github.com/relmap/relmap/schema"
	"github.com/relmap/relmap/utils"
)

// FieldValue value of field, rendered as its SQL literal
type FieldValue struct {
	Field *schema.Field
	Value interface{}
}

// Statement literal statement builder: values are rendered inline as SQL literal text
type Statement struct {
	*Generator
	Schema       *schema.Schema
	ReflectValue reflect.Value
	Table        string
	Clauses      map[string]clause.Clause
	SQL          strings.Builder
	// Vars number of values rendered
	Vars  int64
	Error error
}

// Statement prepares a statement for value, a struct, a pointer to one or a schema.Record.
// The table is resolved again on every call.
func (g *Generator) Statement(value interface{}) (*Statement, error) {
	if value == nil {
		return nil, ErrModelValueRequired
	}

	s, err := g.Parse(value)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %v", ErrModelValueRequired, s)
		}
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return nil, fmt.Errorf("%w: statements render one %v at a time", ErrUnsupportedType, s)
	}

	return &Statement{
		Generator:    g,
		Schema:       s,
		ReflectValue: rv,
		Table:        s.TableName(rv),
		Clauses:      map[string]clause.Clause{},
	}, nil
}

// AddClause add clause
func (stmt *Statement) AddClause(v clause.Interface) {
	name := v.Name()
	c := stmt.Clauses[name]
	c.Name = name
	v.MergeClause(&c)
	stmt.Clauses[name] = c
}

// Build build sql with clauses names
func (stmt *Statement) Build(clauses ...string) {
	var firstClauseWritten bool

	for _, name := range clauses {
		if c, ok := stmt.Clauses[name]; ok {
			if firstClauseWritten {
				stmt.WriteByte(' ')
			}

			firstClauseWritten = true
			c.Build(stmt)
		}
	}
}

// WriteByte write byte
func (stmt *Statement) WriteByte(c byte) error {
	return stmt.SQL.WriteByte(c)
}

// WriteString write string
func (stmt *Statement) WriteString(str string) (int, error) {
	return stmt.SQL.WriteString(str)
}

// WriteQuoted writes table and column names as they are, identifiers are never quoted
func (stmt *Statement) WriteQuoted(field interface{}) {
	switch v := field.(type) {
	case clause.Table:
		stmt.SQL.WriteString(v.Name)
	case clause.Column:
		stmt.SQL.WriteString(v.Name)
	case string:
		stmt.SQL.WriteString(v)
	default:
		stmt.SQL.WriteString(utils.ToString(v))
	}
}

// AddVar renders vars as SQL literals separated by commas. A field value that fails to
// coerce is rendered as null and reported at warn level.
func (stmt *Statement) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}
		stmt.Vars++

		switch v := v.(type) {
		case FieldValue:
			literal, err := coerce.ToSQLLiteral(v.Field, v.Value)
			if err != nil {
				stmt.Logger.Warn(stmt.Context, "%v rendered as null: %v", v.Field.DBName, err)
			}
			writer.WriteString(literal.String())
		case coerce.Literal:
			writer.WriteString(v.String())
		case nil:
			writer.WriteString(coerce.Null.String())
		case clause.Expr:
			writer.WriteString(v.SQL)
		default:
			writer.WriteString(coerce.Literal{Text: utils.ToString(v), Quoted: true}.String())
		}
	}
}

// AddError add error to statement
func (stmt *Statement) AddError(err error) error {
	if stmt.Error == nil {
		stmt.Error = err
	} else if err != nil {
		stmt.Error = fmt.Errorf("%v; %w", stmt.Error, err)
	}
	return stmt.Error
}

// assignments column=value pairs of fields
func (stmt *Statement) assignments(fields []*schema.Field) (clause.Set, error) {
	set := make(clause.Set, 0, len(fields))
	for _, field := range fields {
		v, err := field.ValueOf(stmt.ReflectValue)
		if err != nil {
			return nil, err
		}
		set = append(set, clause.Assignment{Column: clause.Column{Name: field.DBName}, Value: FieldValue{Field: field, Value: v}})
	}
	return set, nil
}

// conditions identity conditions locating the row, empty when the schema has no identity
func (stmt *Statement) conditions() (clause.Where, error) {
	var where clause.Where
	for _, field := range stmt.Schema.ConditionFields() {
		v, err := field.ValueOf(stmt.ReflectValue)
		if err != nil {
			return where, err
		}
		where.Exprs = append(where.Exprs, clause.Eq{Column: clause.Column{Name: field.DBName}, Value: FieldValue{Field: field, Value: v}})
	}
	return where, nil
}
