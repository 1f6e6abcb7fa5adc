// Package model defines the core graph entities: Vertex, Edge, and the
// property tuples and bulk-insert items that compose them (spec §3).
//
// Grounded on the teacher's storage.Node/storage.Edge shape (pkg/storage/
// types.go) — ID, type/labels, properties — generalized from NornicDB's
// labeled-property-graph model (multiple string labels, a free-form
// properties map plus NornicDB-specific decay/embedding fields) down to
// this spec's single-typed vertex/edge with a validated Identifier type,
// since this domain has no labels, no decay, and no embeddings.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/ident"
)

// Vertex is a graph node: {id: UUID v4, t: Identifier}. t is fixed after
// creation.
type Vertex struct {
	ID uuid.UUID
	T  ident.Identifier
}

// NewVertex allocates a fresh random (v4) vertex id of type t.
func NewVertex(t ident.Identifier) Vertex {
	return Vertex{ID: uuid.New(), T: t}
}

// Edge is a directed triple {outbound_id, t, inbound_id}; these three
// components uniquely identify the edge. Direction is intrinsic: an edge
// from A to B is distinct from one from B to A.
//
// UpdatedAt is incidental metadata, not part of the edge's identity: it
// records when the edge row was last written, sourced from an injectable
// clock.Clock so it stays deterministic in tests (spec "Timestamps").
type Edge struct {
	OutboundID uuid.UUID
	T          ident.Identifier
	InboundID  uuid.UUID
	UpdatedAt  time.Time
}

// Equal reports whether two edges name the same triple. UpdatedAt does not
// participate: it is metadata about the row, not part of its identity.
func (e Edge) Equal(other Edge) bool {
	return e.OutboundID == other.OutboundID &&
		e.T.Equal(other.T) &&
		e.InboundID == other.InboundID
}

// Direction names which endpoint a Pipe query stage follows.
type Direction int

const (
	// Outbound follows edges leading away from a vertex.
	Outbound Direction = iota
	// Inbound follows edges leading into a vertex.
	Inbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// VertexPropertyOwner and EdgePropertyOwner identify the owner of a
// property tuple (spec §3: "(vertex_id, name) → value", "(edge, name) →
// value").
type VertexPropertyOwner = uuid.UUID
type EdgePropertyOwner = Edge

// VertexProperty is a single (vertex_id, name) -> value tuple.
type VertexProperty struct {
	ID    uuid.UUID
	Name  ident.Identifier
	Value any
}

// EdgeProperty is a single (edge, name) -> value tuple.
type EdgeProperty struct {
	Edge  Edge
	Name  ident.Identifier
	Value any
}

// BulkItemKind discriminates the variants accepted by bulk_insert.
type BulkItemKind int

const (
	BulkVertex BulkItemKind = iota
	BulkEdge
	BulkVertexProperty
	BulkEdgeProperty
)

// BulkItem is one member of a bulk_insert sequence: {Vertex(v), Edge(e),
// VertexProperty(id, name, value), EdgeProperty(edge, name, value)}.
//
// Exactly one of the typed fields is populated, selected by Kind. Items
// whose preconditions fail (e.g. an edge whose endpoints do not exist) are
// skipped silently by the facade, matching create_edge's behavior.
type BulkItem struct {
	Kind           BulkItemKind
	Vertex         Vertex
	Edge           Edge
	VertexProperty VertexProperty
	EdgeProperty   EdgeProperty
}

// BulkVertexItem builds a BulkItem wrapping a vertex creation.
func BulkVertexItem(v Vertex) BulkItem { return BulkItem{Kind: BulkVertex, Vertex: v} }

// BulkEdgeItem builds a BulkItem wrapping an edge creation.
func BulkEdgeItem(e Edge) BulkItem { return BulkItem{Kind: BulkEdge, Edge: e} }

// BulkVertexPropertyItem builds a BulkItem wrapping a vertex property set.
func BulkVertexPropertyItem(id uuid.UUID, name ident.Identifier, v any) BulkItem {
	return BulkItem{Kind: BulkVertexProperty, VertexProperty: VertexProperty{ID: id, Name: name, Value: v}}
}

// BulkEdgePropertyItem builds a BulkItem wrapping an edge property set.
func BulkEdgePropertyItem(e Edge, name ident.Identifier, v any) BulkItem {
	return BulkItem{Kind: BulkEdgeProperty, EdgeProperty: EdgeProperty{Edge: e, Name: name, Value: v}}
}
