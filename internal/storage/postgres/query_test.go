package postgres

import (
	"encoding/json"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

func TestSelect_FiltersAndPage(t *testing.T) {
	status := "deployed"
	var name *string

	eq := sq.Eq{"entity_type": "metric"}
	EqIfSet(eq, "status", &status)
	EqIfSet(eq, "name", name)

	q := Builder.Select("id").From("metrics")
	q = NotDeleted(Where(q, eq), false)
	q = Page(q.OrderBy("created_at ASC", "id"), catalog.FindOptions{Skip: 20, Limit: 10})

	query, args, err := Query("test.Find", q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM metrics WHERE entity_type = $1 AND status = $2 AND deleted_at IS NULL ORDER BY created_at ASC, id LIMIT 10 OFFSET 20",
		query)
	if diff := cmp.Diff([]any{"metric", "deployed"}, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestSelect_Empty(t *testing.T) {
	q := Builder.Select("id").From("metrics")
	q = Page(NotDeleted(Where(q, sq.Eq{}), true), catalog.FindOptions{})

	query, args, err := Query("test.Find", q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM metrics", query)
	assert.Empty(t, args)
}

func TestJSONHelpers(t *testing.T) {
	raw, err := EncodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))

	m, err := DecodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, catalog.Metadata{}, m)

	m, err = DecodeJSON([]byte(`{"a1":"red","b2":3}`))
	require.NoError(t, err)
	assert.Equal(t, catalog.Metadata{"a1": "red", "b2": json.Number("3")}, m)

	_, err = DecodeJSON([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestJSONHelpers_IntegerPrecision(t *testing.T) {
	stored := []byte(`{"k":9007199254740993,"f":1.5}`)

	m, err := DecodeJSON(stored)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), m["k"])

	raw, err := EncodeJSON(m)
	require.NoError(t, err)
	assert.Equal(t, `{"f":1.5,"k":9007199254740993}`, string(raw))
}
