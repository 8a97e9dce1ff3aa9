package clause

// Interface clause interface
type Interface interface {
	Name() string
	Build(Builder)
	MergeClause(*Clause)
}

// Writer writer interface
type Writer interface {
	WriteByte(byte) error
	WriteString(string) (int, error)
}

// Builder builder interface. AddVar renders values, a literal builder writes SQL literal
// text while a parametrized one would write placeholders and keep the values aside.
type Builder interface {
	Writer
	WriteQuoted(field interface{})
	AddVar(Writer, ...interface{})
	AddError(error) error
}

// Clause
type Clause struct {
	Name       string // WHERE
	Expression Expression
}

// Build build clause
func (c Clause) Build(builder Builder) {
	if c.Expression == nil {
		return
	}

	if c.Name != "" {
		builder.WriteString(c.Name)
		builder.WriteByte(' ')
	}
	c.Expression.Build(builder)
}
