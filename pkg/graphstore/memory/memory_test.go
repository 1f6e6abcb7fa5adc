package memory

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

func TestCreateAndGetVertex(t *testing.T) {
	s := Default()
	v := model.NewVertex(mustType(t, "Person"))

	created, err := s.CreateVertex(v)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateVertex(v)
	require.NoError(t, err)
	assert.False(t, created, "creating the same id twice must report false, not error")

	got, ok, err := s.GetVertex(v.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestDeleteVertexCascadesEdgesAndProperties(t *testing.T) {
	s := Default()
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)

	edgeType := mustType(t, "knows")
	e := model.Edge{OutboundID: a.ID, T: edgeType, InboundID: b.ID}
	created, err := s.CreateEdge(e)
	require.NoError(t, err)
	assert.True(t, created)

	nameProp := mustType(t, "since")
	require.NoError(t, s.SetEdgeProperty(e, nameProp, value.Number(2020)))
	require.NoError(t, s.SetVertexProperty(a.ID, nameProp, value.String("x")))

	require.NoError(t, s.DeleteVertex(a.ID))

	_, ok, err := s.GetVertex(a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	edges, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	assert.Empty(t, edges, "cascade must remove incident edges")

	_, ok, err = s.GetEdgeProperty(e, nameProp)
	require.NoError(t, err)
	assert.False(t, ok, "cascade must remove edge properties of deleted edges")
}

func TestCreateEdgeRequiresBothEndpoints(t *testing.T) {
	s := Default()
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)

	e := model.Edge{OutboundID: a.ID, T: mustType(t, "knows"), InboundID: uuid.New()}
	created, err := s.CreateEdge(e)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSetPropertyRejectsNull(t *testing.T) {
	s := Default()
	v := model.NewVertex(mustType(t, "Person"))
	_, _ = s.CreateVertex(v)

	err := s.SetVertexProperty(v.ID, mustType(t, "nickname"), value.Null)
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.Validation, kind)
}

func TestRangeVerticesAscendingAndLimit(t *testing.T) {
	s := Default()
	tp := mustType(t, "Person")
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		v := model.NewVertex(tp)
		_, _ = s.CreateVertex(v)
		ids = append(ids, v.ID)
	}

	all, err := s.RangeVertices(uuid.UUID{}, false, nil, 1<<20)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, bytesLess(all[i-1].ID, all[i].ID), "range must be ascending by id")
	}

	limited, err := s.RangeVertices(uuid.UUID{}, false, nil, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func bytesLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func TestIndexPropertyBackfillsExisting(t *testing.T) {
	s := Default()
	tp := mustType(t, "Person")
	nameProp := mustType(t, "city")

	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)
	require.NoError(t, s.SetVertexProperty(a.ID, nameProp, value.String("nyc")))
	require.NoError(t, s.SetVertexProperty(b.ID, nameProp, value.String("nyc")))

	_, err := s.VerticesWithPropertyValue(nameProp, value.String("nyc"))
	require.Error(t, err, "must be NotIndexed before index_property is called")
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.NotIndexed, kind)

	require.NoError(t, s.IndexProperty(nameProp))

	ids, err := s.VerticesWithPropertyValue(nameProp, value.String("nyc"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/snapshot.gob"

	s := Create(path)
	tp := mustType(t, "Person")
	v := model.NewVertex(tp)
	_, _ = s.CreateVertex(v)
	require.NoError(t, s.SetVertexProperty(v.ID, mustType(t, "name"), value.String("Ada")))
	require.NoError(t, s.Sync())

	s2, err := Read(path)
	require.NoError(t, err)

	got, ok, err := s2.GetVertex(v.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)

	prop, ok, err := s2.GetVertexProperty(v.ID, mustType(t, "name"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, value.Equal(value.String("Ada"), prop))
}

func TestBulkInsertReportsAppliedAndSkipped(t *testing.T) {
	s := Default()
	tp := mustType(t, "Person")
	v := model.NewVertex(tp)

	items := []model.BulkItem{
		model.BulkVertexItem(v),
		model.BulkVertexItem(v), // duplicate, should be skipped
	}
	applied, skipped, err := s.BulkInsert(items)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, skipped)
}

func TestDeleteBatchRemovesEveryVertexAndEdge(t *testing.T) {
	s := Default()
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
	assert.False(t, ok, "a must be deleted")

	_, ok, err = s.GetVertex(b.ID)
	require.NoError(t, err)
	assert.True(t, ok, "b was not targeted by the batch and must survive")

	edges, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	assert.Empty(t, edges, "e must be deleted")
}

func TestSetPropertiesBatchSetsEveryOwner(t *testing.T) {
	s := Default()
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

func TestCreateEdgeStampsUpdatedAtFromClockAndSurvivesSnapshot(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	path := dir + "/snapshot.gob"

	s := Create(path, WithClock(clock.Fixed{At: fixed}))
	tp := mustType(t, "Person")
	a := model.NewVertex(tp)
	b := model.NewVertex(tp)
	_, _ = s.CreateVertex(a)
	_, _ = s.CreateVertex(b)

	e := model.Edge{OutboundID: a.ID, T: mustType(t, "knows"), InboundID: b.ID}
	_, err := s.CreateEdge(e)
	require.NoError(t, err)

	edges, err := s.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.True(t, fixed.Equal(edges[0].UpdatedAt), "CreateEdge must stamp UpdatedAt from the injected clock")

	require.NoError(t, s.Sync())
	s2, err := Read(path)
	require.NoError(t, err)

	reloaded, err := s2.SpecificEdges([]model.Edge{e})
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.True(t, fixed.Equal(reloaded[0].UpdatedAt), "the saved timestamp must survive a snapshot round-trip unchanged")
}

func TestSetPropertiesBatchRejectsNull(t *testing.T) {
	s := Default()
	v := model.NewVertex(mustType(t, "Person"))
	_, _ = s.CreateVertex(v)

	err := s.SetPropertiesBatch([]uuid.UUID{v.ID}, nil, mustType(t, "nickname"), value.Null)
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.Validation, kind)
}
