package graphdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimirgraph/pgraph/pkg/graphstore/memory"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/query"
	"github.com/mimirgraph/pgraph/pkg/queryeval"
	"github.com/mimirgraph/pgraph/pkg/value"
)

func mustIdent(t *testing.T, s string) ident.Identifier {
	t.Helper()
	id, err := ident.New(s)
	require.NoError(t, err)
	return id
}

func TestCreateVertexFromType(t *testing.T) {
	db := New(memory.Default())
	v, err := db.CreateVertexFromType(mustIdent(t, "Person"))
	require.NoError(t, err)
	assert.False(t, v.ID.String() == "")

	out, err := db.Get(query.SpecificVertex([]uuid.UUID{v.ID}))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, v, out[0].Vertex)
}

func TestSetAndGetPropertyThroughFacade(t *testing.T) {
	db := New(memory.Default())
	v, err := db.CreateVertexFromType(mustIdent(t, "Person"))
	require.NoError(t, err)

	name := mustIdent(t, "age")
	require.NoError(t, db.SetVertexProperty(v.ID, name, value.Number(42)))

	single, err := query.PipeProperty(query.SpecificVertex([]uuid.UUID{v.ID}), &name)
	require.NoError(t, err)
	out, err := db.Get(single)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, queryeval.OutputVertexProperty, out[0].Kind)
}

func TestIndexPropertyAndIsIndexed(t *testing.T) {
	db := New(memory.Default())
	name := mustIdent(t, "city")
	assert.False(t, db.IsIndexed(name))

	require.NoError(t, db.IndexProperty(name))
	assert.True(t, db.IsIndexed(name))
}

func TestBulkInsertThroughFacade(t *testing.T) {
	db := New(memory.Default())
	tp := mustIdent(t, "Person")
	v := model.NewVertex(tp)

	applied, skipped, err := db.BulkInsert([]model.BulkItem{model.BulkVertexItem(v)})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, skipped)
}

func TestDeleteVertexThroughFacade(t *testing.T) {
	db := New(memory.Default())
	v, err := db.CreateVertexFromType(mustIdent(t, "Person"))
	require.NoError(t, err)

	require.NoError(t, db.DeleteVertex(v.ID))

	out, err := db.Get(query.SpecificVertex([]uuid.UUID{v.ID}))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSetPropertiesOverQueryBulkSetsEveryOwner(t *testing.T) {
	db := New(memory.Default())
	tp := mustIdent(t, "Person")
	a, err := db.CreateVertexFromType(tp)
	require.NoError(t, err)
	b, err := db.CreateVertexFromType(tp)
	require.NoError(t, err)

	color := mustIdent(t, "color")
	require.NoError(t, db.SetProperties(query.SpecificVertex([]uuid.UUID{a.ID, b.ID}), color, value.String("red")))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		single, err := query.PipeProperty(query.SpecificVertex([]uuid.UUID{id}), &color)
		require.NoError(t, err)
		out, err := db.Get(single)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.True(t, value.Equal(value.String("red"), out[0].VertexProperty.Value.(value.Value)))
	}
}

func TestDeleteOverQueryBulkDeletesEveryOwner(t *testing.T) {
	db := New(memory.Default())
	tp := mustIdent(t, "Person")
	a, err := db.CreateVertexFromType(tp)
	require.NoError(t, err)
	b, err := db.CreateVertexFromType(tp)
	require.NoError(t, err)

	require.NoError(t, db.Delete(query.SpecificVertex([]uuid.UUID{a.ID, b.ID})))

	out, err := db.Get(query.AllVertex())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDeleteRejectsNonOwnerShapedQuery(t *testing.T) {
	db := New(memory.Default())
	err := db.Delete(query.Count(query.AllVertex()))
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.Unsupported, kind)
}
