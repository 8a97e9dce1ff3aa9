package clause_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/relmap/relmap/clause"
)

// placeholderBuilder writes ? for every value and keeps the values aside
type placeholderBuilder struct {
	strings.Builder
	Clauses map[string]clause.Clause
	Vars    []interface{}
	Errors  []error
}

func newBuilder() *placeholderBuilder {
	return &placeholderBuilder{Clauses: map[string]clause.Clause{}}
}

func (b *placeholderBuilder) WriteQuoted(field interface{}) {
	switch v := field.(type) {
	case clause.Table:
		b.WriteString(`"` + v.Name + `"`)
	case clause.Column:
		b.WriteString(`"` + v.Name + `"`)
	default:
		b.WriteString(fmt.Sprint(v))
	}
}

func (b *placeholderBuilder) AddVar(writer clause.Writer, vars ...interface{}) {
	for idx, v := range vars {
		if idx > 0 {
			writer.WriteByte(',')
		}
		b.Vars = append(b.Vars, v)
		writer.WriteByte('?')
	}
}

func (b *placeholderBuilder) AddError(err error) error {
	b.Errors = append(b.Errors, err)
	return err
}

func (b *placeholderBuilder) AddClause(v clause.Interface) {
	c := b.Clauses[v.Name()]
	c.Name = v.Name()
	v.MergeClause(&c)
	b.Clauses[v.Name()] = c
}

func (b *placeholderBuilder) Build(names ...string) string {
	for idx, name := range names {
		if idx > 0 {
			b.WriteByte(' ')
		}
		b.Clauses[name].Build(b)
	}
	return b.String()
}

func TestClauses(t *testing.T) {
	table := clause.Table{Name: "sales.Customer"}
	results := []struct {
		Clauses []clause.Interface
		Names   []string
		Result  string
		Vars    []interface{}
	}{
		{
			[]clause.Interface{
				clause.Insert{Table: table},
				clause.Values{Columns: []clause.Column{{Name: "name"}, {Name: "balance"}}, Values: []interface{}{"Mary", 12.5}},
			},
			[]string{"INSERT", "VALUES"},
			`INSERT INTO "sales.Customer" ("name","balance") VALUES(?,?)`, []interface{}{"Mary", 12.5},
		},
		{
			[]clause.Interface{
				clause.Update{Table: table},
				clause.Set{{Column: clause.Column{Name: "name"}, Value: "Mary"}},
				clause.Set{{Column: clause.Column{Name: "balance"}, Value: 12.5}},
				clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.Column{Name: "id"}, Value: 1}}},
				clause.Where{Exprs: []clause.Expression{clause.Eq{Column: clause.Column{Name: "serie"}, Value: "A"}}},
			},
			[]string{"UPDATE", "SET", "WHERE"},
			`UPDATE "sales.Customer" SET "name"=?,"balance"=? WHERE "id"=? AND "serie"=?`, []interface{}{"Mary", 12.5, 1, "A"},
		},
		{
			[]clause.Interface{clause.Delete{}, clause.From{Table: table}, clause.Where{}},
			[]string{"DELETE", "FROM", "WHERE"},
			`DELETE FROM "sales.Customer" WHERE `, nil,
		},
		{
			[]clause.Interface{clause.Delete{}, clause.From{Table: table}, clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1=1"}}}},
			[]string{"DELETE", "FROM", "WHERE"},
			`DELETE FROM "sales.Customer" WHERE 1=1`, nil,
		},
	}

	for idx, result := range results {
		t.Run(fmt.Sprintf("case #%v", idx), func(t *testing.T) {
			builder := newBuilder()
			for _, c := range result.Clauses {
				builder.AddClause(c)
			}

			if sql := builder.Build(result.Names...); sql != result.Result {
				t.Errorf("SQL expects %v got %v", result.Result, sql)
			}

			if !reflect.DeepEqual(builder.Vars, result.Vars) {
				t.Errorf("Vars expects %+v got %v", result.Vars, builder.Vars)
			}
		})
	}
}

func TestEmptyClauseIsSkipped(t *testing.T) {
	builder := newBuilder()
	clause.Clause{Name: "WHERE"}.Build(builder)
	if builder.String() != "" {
		t.Errorf("clause without expression should render nothing, got %q", builder.String())
	}
}
