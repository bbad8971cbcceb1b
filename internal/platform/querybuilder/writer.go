// Package querybuilder renders the small set of Postgres statements the
// repositories need, numbering placeholders as $1, $2 and so on.
package querybuilder

import (
	"strconv"
	"strings"
)

// writer accumulates SQL text and its positional arguments.
type writer struct {
	buf  strings.Builder
	args []any
}

func (w *writer) sql(parts ...string) {
	for _, p := range parts {
		w.buf.WriteString(p)
	}
}

// bind appends v as the next positional argument.
func (w *writer) bind(v any) {
	w.args = append(w.args, v)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes raw SQL where every '?' consumes one of exprArgs. Extra
// question marks are written literally.
func (w *writer) expr(raw string, exprArgs []any) {
	next := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(raw[i])
	}
}

func (w *writer) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.sql(" WHERE ")
		} else {
			w.sql(" AND ")
		}
		c.write(w)
	}
}

func (w *writer) suffix(raw string) {
	if raw == "" {
		return
	}
	w.sql(" ")
	w.expr(raw, nil)
}

func (w *writer) result() (string, []any, error) {
	return w.buf.String(), w.args, nil
}
