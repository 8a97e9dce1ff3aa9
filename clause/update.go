package clause

type Update struct {
	Table Table
}

// Name update clause name
func (update Update) Name() string {
	return "UPDATE"
}

// Build build update clause
func (update Update) Build(builder Builder) {
	builder.WriteQuoted(update.Table)
}

// MergeClause merge update clause
func (update Update) MergeClause(clause *Clause) {
	if v, ok := clause.Expression.(Update); ok && update.Table.Name == "" {
		update.Table = v.Table
	}
	clause.Expression = update
}

type Set []Assignment

type Assignment struct {
	Column Column
	Value  interface{}
}

func (set Set) Name() string {
	return "SET"
}

// Build build set clause as c1=v1,c2=v2
func (set Set) Build(builder Builder) {
	for idx, assignment := range set {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteQuoted(assignment.Column)
		builder.WriteByte('=')
		builder.AddVar(builder, assignment.Value)
	}
}

// MergeClause merge assignments clauses
func (set Set) MergeClause(clause *Clause) {
	if v, ok := clause.Expression.(Set); ok {
		set = append(append(Set{}, v...), set...)
	}
	clause.Expression = set
}
