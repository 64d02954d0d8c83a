package postgres

import (
	"fmt"
	"strings"

	"github.com/hongminglow/lab-portal/internal/storage"
)

// whereBuilder accumulates AND-ed conditions with positional parameters.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends a condition; every %[1]s in cond is replaced by the placeholder bound to arg.
func (b *whereBuilder) add(cond string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(cond, fmt.Sprintf("$%d", len(b.args))))
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with the full argument list.
func (b *whereBuilder) page(p storage.Page) (string, []any) {
	offset := 0
	if p.Page > 1 {
		offset = (p.Page - 1) * p.Limit
	}
	n := len(b.args)
	args := append(append([]any(nil), b.args...), p.Limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// setBuilder accumulates assignments for a dynamic UPDATE.
type setBuilder struct {
	sets []string
	args []any
}

func (b *setBuilder) set(expr string, arg any) {
	b.args = append(b.args, arg)
	b.sets = append(b.sets, fmt.Sprintf(expr, fmt.Sprintf("$%d", len(b.args))))
}

func (b *setBuilder) empty() bool {
	return len(b.sets) == 0
}

// sql renders the SET list plus updated_at and binds id as the last parameter.
func (b *setBuilder) sql(id int64) (string, string, []any) {
	args := append(append([]any(nil), b.args...), id)
	sets := append(append([]string(nil), b.sets...), "updated_at = NOW()")
	return strings.Join(sets, ", "), fmt.Sprintf("$%d", len(args)), args
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
