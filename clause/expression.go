package clause

// Expression expression interface
type Expression interface {
	Build(builder Builder)
}

// Column column name
type Column struct {
	Name string
}

// Table table name, already qualified with its schema when it has one
type Table struct {
	Name string
}

// Expr raw expression
type Expr struct {
	SQL string
}

// Build build raw expression
func (expr Expr) Build(builder Builder) {
	builder.WriteString(expr.SQL)
}

// Eq equal to for where
type Eq struct {
	Column Column
	Value  interface{}
}

func (eq Eq) Build(builder Builder) {
	builder.WriteQuoted(eq.Column)
	builder.WriteByte('=')
	builder.AddVar(builder, eq.Value)
}
