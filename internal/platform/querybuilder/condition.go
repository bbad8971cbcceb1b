package querybuilder

type Condition interface {
	write(w *writer)
}

type condFunc func(w *writer)

func (f condFunc) write(w *writer) { f(w) }

func Eq(column string, value any) Condition {
	return condFunc(func(w *writer) {
		w.sql(column, " = ")
		w.bind(value)
	})
}

// In renders column IN (...). An empty list matches nothing.
func In(column string, values []any) Condition {
	return condFunc(func(w *writer) {
		if len(values) == 0 {
			w.sql("1=0")
			return
		}
		w.sql(column, " IN (")
		for i, v := range values {
			if i > 0 {
				w.sql(", ")
			}
			w.bind(v)
		}
		w.sql(")")
	})
}

func IsNull(column string) Condition {
	return condFunc(func(w *writer) {
		w.sql(column, " IS NULL")
	})
}

// Expr is a raw predicate with '?' placeholders.
func Expr(raw string, args ...any) Condition {
	return condFunc(func(w *writer) {
		w.expr(raw, args)
	})
}
