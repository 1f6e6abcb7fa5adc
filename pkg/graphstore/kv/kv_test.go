package kv

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimirgraph/pgraph/pkg/clock"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/value"
)

func mustType(t *testing.T, s string) ident.Identifier {
	t.Helper()
	id, err := ident.New(s)
	require.NoError(t, err)
	return id
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVCreateAndGetVertex(t *testing.T) {
	s := openStore(t)
	v := model.NewVertex(mustType(t, "Person"))

	created, err := s.CreateVertex(v)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateVertex(v)
	require.NoError(t, err)
	assert.False(t, created)

	got, ok, err := s.GetVertex(v.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestKVDeleteVertexCascades(t *testing.T) {
	s := openStore(t)
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)

	e := model.Edge{OutboundID: a.ID, T: mustType(t, "knows"), InboundID: b.ID}
	created, err := s.CreateEdge(e)
	require.NoError(t, err)
	assert.True(t, created)

	name := mustType(t, "since")
	require.NoError(t, s.SetEdgeProperty(e, name, value.Number(2020)))
	require.NoError(t, s.SetVertexProperty(a.ID, name, value.String("x")))

	require.NoError(t, s.DeleteVertex(a.ID))

	_, ok, err := s.GetVertex(a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	edges, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	assert.Empty(t, edges)

	_, ok, err = s.GetEdgeProperty(e, name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVSetPropertyRejectsNull(t *testing.T) {
	s := openStore(t)
	v := model.NewVertex(mustType(t, "Person"))
	_, _ = s.CreateVertex(v)

	err := s.SetVertexProperty(v.ID, mustType(t, "nickname"), value.Null)
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.Validation, kind)
}

func TestKVRangeVerticesAscending(t *testing.T) {
	s := openStore(t)
	tp := mustType(t, "Person")
	for i := 0; i < 5; i++ {
		_, _ = s.CreateVertex(model.NewVertex(tp))
	}

	all, err := s.RangeVertices(uuid.UUID{}, false, nil, 1<<20)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, lessUUID(all[i-1].ID, all[i].ID))
	}

	limited, err := s.RangeVertices(uuid.UUID{}, false, nil, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func TestKVIndexPropertyBackfillsExisting(t *testing.T) {
	s := openStore(t)
	tp := mustType(t, "Person")
	name := mustType(t, "city")

	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)
	require.NoError(t, s.SetVertexProperty(a.ID, name, value.String("nyc")))
	require.NoError(t, s.SetVertexProperty(b.ID, name, value.String("nyc")))

	_, err := s.VerticesWithPropertyValue(name, value.String("nyc"))
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.NotIndexed, kind)

	require.NoError(t, s.IndexProperty(name))

	ids, err := s.VerticesWithPropertyValue(name, value.String("nyc"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
}

func TestKVVertexPropertiesEnumeratesInNameOrder(t *testing.T) {
	s := openStore(t)
	v := model.NewVertex(mustType(t, "Person"))
	_, _ = s.CreateVertex(v)
	require.NoError(t, s.SetVertexProperty(v.ID, mustType(t, "gamma"), value.Bool(true)))
	require.NoError(t, s.SetVertexProperty(v.ID, mustType(t, "alpha"), value.Number(1)))

	props, err := s.VertexProperties(v.ID)
	require.NoError(t, err)
	require.Len(t, props, 2)
	// Same-length names sort lexicographically by the encoded key's byte
	// order, which matches name order only for equal-length names (the key
	// encodes a name-length prefix before the name itself).
	assert.Equal(t, "alpha", props[0].Name.String())
	assert.Equal(t, "gamma", props[1].Name.String())
}

func TestKVBulkInsertReportsAppliedAndSkipped(t *testing.T) {
	s := openStore(t)
	v := model.NewVertex(mustType(t, "Person"))

	items := []model.BulkItem{
		model.BulkVertexItem(v),
		model.BulkVertexItem(v),
	}
	applied, skipped, err := s.BulkInsert(items)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, skipped)
}

func TestKVDeleteBatchRemovesEveryVertexAndEdge(t *testing.T) {
	s := openStore(t)
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	c := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)
	_, _ = s.CreateVertex(c)
	e := model.Edge{OutboundID: b.ID, T: mustType(t, "knows"), InboundID: c.ID}
	_, _ = s.CreateEdge(e)

	require.NoError(t, s.DeleteBatch([]uuid.UUID{a.ID}, []model.Edge{e}))

	_, ok, err := s.GetVertex(a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.GetVertex(b.ID)
	require.NoError(t, err)
	assert.True(t, ok, "b was not targeted by the batch and must survive")

	edges, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestKVSetPropertiesBatchSetsEveryOwner(t *testing.T) {
	s := openStore(t)
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)
	e := model.Edge{OutboundID: a.ID, T: mustType(t, "knows"), InboundID: b.ID}
	_, _ = s.CreateEdge(e)

	name := mustType(t, "color")
	require.NoError(t, s.SetPropertiesBatch([]uuid.UUID{a.ID, b.ID}, []model.Edge{e}, name, value.String("red")))

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		v, ok, err := s.GetVertexProperty(id, name)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, value.Equal(value.String("red"), v))
	}
	v, ok, err := s.GetEdgeProperty(e, name)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, value.Equal(value.String("red"), v))
}

func TestKVCreateEdgeRequiresBothEndpoints(t *testing.T) {
	s := openStore(t)
	a := model.NewVertex(mustType(t, "Person"))
	_, _ = s.CreateVertex(a)

	e := model.Edge{OutboundID: a.ID, T: mustType(t, "knows"), InboundID: uuid.New()}
	created, err := s.CreateEdge(e)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestKVCreateEdgeStampsAndReturnsUpdatedAt(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := Open(Options{InMemory: true, Clock: clock.Fixed{At: fixed}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)

	knows := mustType(t, "knows")
	e := model.Edge{OutboundID: a.ID, T: knows, InboundID: b.ID}
	_, err = s.CreateEdge(e)
	require.NoError(t, err)

	all, err := s.AllEdges(1 << 20)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, fixed.Equal(all[0].UpdatedAt), "AllEdges must return the clock-stamped timestamp")

	specific, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	require.Len(t, specific, 1)
	assert.True(t, fixed.Equal(specific[0].UpdatedAt), "SpecificEdges must return the clock-stamped timestamp")

	outbound, err := s.RangeEdgesByDirection(a.ID, model.Outbound, nil, 1<<20)
	require.NoError(t, err)
	require.Len(t, outbound, 1)
	assert.True(t, fixed.Equal(outbound[0].UpdatedAt), "RangeEdgesByDirection(outbound) must return the clock-stamped timestamp")

	inbound, err := s.RangeEdgesByDirection(b.ID, model.Inbound, nil, 1<<20)
	require.NoError(t, err)
	require.Len(t, inbound, 1)
	assert.True(t, fixed.Equal(inbound[0].UpdatedAt), "RangeEdgesByDirection(inbound) must return the clock-stamped timestamp")
}
