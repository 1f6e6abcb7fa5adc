package query

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/value"
)

func mustIdent(t *testing.T, s string) ident.Identifier {
	t.Helper()
	id, err := ident.New(s)
	require.NoError(t, err)
	return id
}

func TestShapeOfLeafQueries(t *testing.T) {
	assert.Equal(t, ShapeVertices, AllVertex().Shape())
	assert.Equal(t, ShapeEdges, AllEdge().Shape())
	assert.Equal(t, ShapeVertices, RangeVertex().Shape())
	assert.Equal(t, ShapeVertices, SpecificVertex(nil).Shape())
	assert.Equal(t, ShapeEdges, SpecificEdge(nil).Shape())
}

func TestShapeOfPipe(t *testing.T) {
	p, err := Pipe(AllVertex(), model.Outbound)
	require.NoError(t, err)
	assert.Equal(t, ShapeEdges, p.Shape(), "piping from vertices yields edges")

	p2, err := Pipe(p, model.Outbound)
	require.NoError(t, err)
	assert.Equal(t, ShapeVertices, p2.Shape(), "piping from edges yields vertices")
}

func TestShapeOfPipeProperty(t *testing.T) {
	name := mustIdent(t, "age")
	p, err := PipeProperty(AllVertex(), &name)
	require.NoError(t, err)
	assert.Equal(t, ShapeVertexProperties, p.Shape())

	edges, err := Pipe(AllVertex(), model.Outbound)
	require.NoError(t, err)
	p2, err := PipeProperty(edges, nil)
	require.NoError(t, err)
	assert.Equal(t, ShapeEdgeProperties, p2.Shape())
}

func TestShapeOfCountAndInclude(t *testing.T) {
	assert.Equal(t, ShapeCount, Count(AllVertex()).Shape())
	assert.Equal(t, ShapeVertices, Include(AllVertex()).Shape())
}

func TestPipeRejectsIncompatiblePredecessor(t *testing.T) {
	countQ := Count(AllVertex())
	_, err := Pipe(countQ, model.Outbound)
	require.Error(t, err)
	kind, ok := pgerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pgerr.Unsupported, kind)
}

func TestPipePropertyValueRejectsIncompatiblePredecessor(t *testing.T) {
	countQ := Count(AllVertex())
	_, err := PipePropertyValue(countQ, mustIdent(t, "age"), value.Number(1), true)
	require.Error(t, err)
	_, ok := pgerr.KindOf(err)
	assert.True(t, ok)
}

func TestPipePropertyPresenceRejectsIncompatiblePredecessor(t *testing.T) {
	vertexProps, err := PipeProperty(AllVertex(), nil)
	require.NoError(t, err)

	_, err = PipePropertyPresence(vertexProps, mustIdent(t, "age"), true)
	require.Error(t, err, "a property stream is not a vertex/edge stream")
}

func TestWithLimitZeroIsPreserved(t *testing.T) {
	q := RangeVertex(WithLimit(0))
	assert.Equal(t, uint64(0), q.Limit)
}

func TestDefaultLimitApplied(t *testing.T) {
	assert.Equal(t, uint64(DefaultLimit), AllVertex().Limit)
	assert.Equal(t, uint64(DefaultLimit), RangeVertex().Limit)
}

func TestRangeVertexOptions(t *testing.T) {
	tp := mustIdent(t, "Person")
	id := uuid.New()
	q := RangeVertex(WithStartID(id), WithType(tp), WithLimit(5))
	assert.True(t, q.HasStart)
	assert.Equal(t, id, q.StartID)
	assert.True(t, q.HasT)
	assert.Equal(t, tp, q.T)
	assert.Equal(t, uint64(5), q.Limit)
}
