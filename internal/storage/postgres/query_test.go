package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/lab-portal/internal/storage"
)

func TestWhereBuilder(t *testing.T) {
	var b whereBuilder
	assert.Equal(t, "", b.sql())

	b.add("n.status = %s", "published")
	b.add("(n.title ILIKE %[1]s OR n.content ILIKE %[1]s)", "%lab%")
	assert.Equal(t, " WHERE n.status = $1 AND (n.title ILIKE $2 OR n.content ILIKE $2)", b.sql())

	clause, args := b.page(storage.Page{Page: 3, Limit: 10})
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []any{"published", "%lab%", 10, 20}, args)
	assert.Len(t, b.args, 2, "page must not mutate the filter args")
}

func TestSetBuilder(t *testing.T) {
	var b setBuilder
	assert.True(t, b.empty())
	b.set("title = %s", "New")
	b.set("featured = %s", true)

	sets, idParam, args := b.sql(9)
	assert.Equal(t, "title = $1, featured = $2, updated_at = NOW()", sets)
	assert.Equal(t, "$3", idParam)
	assert.Equal(t, []any{"New", true, int64(9)}, args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%100\% pure\_lab%`, likePattern("100% pure_lab"))
}
