package clause

// Where where clause, conditions joined by AND. Without conditions the clause still
// renders its keyword, so a statement ends in "WHERE ".
type Where struct {
	Exprs []Expression
}

// Name where clause name
func (where Where) Name() string {
	return "WHERE"
}

// Build build where clause
func (where Where) Build(builder Builder) {
	for idx, expr := range where.Exprs {
		if idx > 0 {
			builder.WriteString(" AND ")
		}
		expr.Build(builder)
	}
}

// MergeClause merge where clauses
func (where Where) MergeClause(clause *Clause) {
	if w, ok := clause.Expression.(Where); ok {
		exprs := make([]Expression, len(w.Exprs), len(w.Exprs)+len(where.Exprs))
		copy(exprs, w.Exprs)
		where.Exprs = append(exprs, where.Exprs...)
	}
	clause.Expression = where
}
