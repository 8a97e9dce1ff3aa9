package clause

type Insert struct {
	Table Table
}

// Name insert clause name
func (insert Insert) Name() string {
	return "INSERT"
}

// Build build insert clause
func (insert Insert) Build(builder Builder) {
	builder.WriteString("INTO ")
	builder.WriteQuoted(insert.Table)
}

// MergeClause merge insert clause
func (insert Insert) MergeClause(clause *Clause) {
	if v, ok := clause.Expression.(Insert); ok && insert.Table.Name == "" {
		insert.Table = v.Table
	}
	clause.Expression = insert
}

// Values one row of columns and their values
type Values struct {
	Columns []Column
	Values  []interface{}
}

// Name values clause name
func (Values) Name() string {
	return "VALUES"
}

// Build build values clause as (c1,c2) VALUES(v1,v2)
func (values Values) Build(builder Builder) {
	builder.WriteByte('(')
	for idx, column := range values.Columns {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(column)
	}
	builder.WriteString(") VALUES(")
	builder.AddVar(builder, values.Values...)
	builder.WriteByte(')')
}

// MergeClause merge values clauses
func (values Values) MergeClause(clause *Clause) {
	clause.Name = ""
	clause.Expression = values
}
