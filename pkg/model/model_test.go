package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimirgraph/pgraph/pkg/ident"
)

func mustIdent(t *testing.T, s string) ident.Identifier {
	t.Helper()
	id, err := ident.New(s)
	require.NoError(t, err)
	return id
}

func TestNewVertexGeneratesDistinctIDs(t *testing.T) {
	tp := mustIdent(t, "Person")
	a := NewVertex(tp)
	b := NewVertex(tp)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, tp, a.T)
}

func TestEdgeEqual(t *testing.T) {
	tp := mustIdent(t, "knows")
	a, b := uuid.New(), uuid.New()
	e1 := Edge{OutboundID: a, T: tp, InboundID: b}
	e2 := Edge{OutboundID: a, T: tp, InboundID: b}
	e3 := Edge{OutboundID: b, T: tp, InboundID: a}

	assert.True(t, e1.Equal(e2))
	assert.False(t, e1.Equal(e3), "direction is intrinsic to edge identity")
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "outbound", Outbound.String())
	assert.Equal(t, "inbound", Inbound.String())
}

func TestBulkItemBuilders(t *testing.T) {
	tp := mustIdent(t, "Person")
	v := NewVertex(tp)
	e := Edge{OutboundID: v.ID, T: mustIdent(t, "knows"), InboundID: uuid.New()}
	name := mustIdent(t, "age")

	vi := BulkVertexItem(v)
	assert.Equal(t, BulkVertex, vi.Kind)
	assert.Equal(t, v, vi.Vertex)

	ei := BulkEdgeItem(e)
	assert.Equal(t, BulkEdge, ei.Kind)
	assert.Equal(t, e, ei.Edge)

	vpi := BulkVertexPropertyItem(v.ID, name, 42.0)
	assert.Equal(t, BulkVertexProperty, vpi.Kind)
	assert.Equal(t, v.ID, vpi.VertexProperty.ID)
	assert.Equal(t, name, vpi.VertexProperty.Name)

	epi := BulkEdgePropertyItem(e, name, 42.0)
	assert.Equal(t, BulkEdgeProperty, epi.Kind)
	assert.True(t, epi.EdgeProperty.Edge.Equal(e))
}
