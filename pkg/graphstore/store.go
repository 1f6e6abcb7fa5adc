// Package graphstore defines the storage engine interface shared by the two
// backends (spec §4.4, §4.5): a fully in-memory store (package
// graphstore/memory) and one keyed over an embedded ordered KV engine
// (package graphstore/kv).
//
// Grounded on the teacher's storage.Engine interface (pkg/storage/types.go)
// — CRUD for nodes/edges, label-keyed lookup, in/out traversal, bulk
// operations, stats — generalized from NornicDB's labeled-property-graph
// shape to this spec's single-typed vertex/edge plus a secondary
// property-value index, since this domain has no labels and needs
// equality/presence lookups over arbitrary property values rather than
// fixed label membership.
package graphstore

import (
	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// Store is the storage engine interface both backends implement. Every
// method opens (and closes, on return) its own transaction: spec §5 says
// reads within one call see one consistent snapshot, and there are no
// multi-call transactions in this design.
//
// Implementations MUST be safe for concurrent use from multiple goroutines.
type Store interface {
	// Vertex operations. CreateVertex reports whether the vertex was new.
	CreateVertex(v model.Vertex) (bool, error)
	GetVertex(id uuid.UUID) (model.Vertex, bool, error)
	DeleteVertex(id uuid.UUID) error
	RangeVertices(start uuid.UUID, hasStart bool, t *ident.Identifier, limit uint64) ([]model.Vertex, error)
	SpecificVertices(ids []uuid.UUID) ([]model.Vertex, error)

	// Edge operations. CreateEdge reports whether the edge was newly
	// created; it reports false without error if either endpoint vertex
	// does not exist (spec §3: "not created" without error).
	CreateEdge(e model.Edge) (bool, error)
	DeleteEdge(e model.Edge) error
	AllEdges(limit uint64) ([]model.Edge, error)
	SpecificEdges(edges []model.Edge) ([]model.Edge, error)
	RangeEdgesByDirection(vertexID uuid.UUID, dir model.Direction, t *ident.Identifier, limit uint64) ([]model.Edge, error)

	// Property operations.
	GetVertexProperty(id uuid.UUID, name ident.Identifier) (value.Value, bool, error)
	SetVertexProperty(id uuid.UUID, name ident.Identifier, v value.Value) error
	DeleteVertexProperty(id uuid.UUID, name ident.Identifier) error
	GetEdgeProperty(e model.Edge, name ident.Identifier) (value.Value, bool, error)
	SetEdgeProperty(e model.Edge, name ident.Identifier, v value.Value) error
	DeleteEdgeProperty(e model.Edge, name ident.Identifier) error

	// VertexProperties and EdgeProperties enumerate every property an
	// entity owns, for the query evaluator's "all properties" pipe stage, in
	// ascending order of the length-prefixed property key: shorter names
	// come first, and names of equal length are in byte order.
	VertexProperties(id uuid.UUID) ([]model.VertexProperty, error)
	EdgeProperties(e model.Edge) ([]model.EdgeProperty, error)

	// Secondary property index.
	IndexProperty(name ident.Identifier) error
	IsIndexed(name ident.Identifier) bool
	VerticesWithPropertyValue(name ident.Identifier, v value.Value) ([]uuid.UUID, error)
	VerticesWithPropertyPresence(name ident.Identifier) ([]uuid.UUID, error)
	EdgesWithPropertyValue(name ident.Identifier, v value.Value) ([]model.Edge, error)
	EdgesWithPropertyPresence(name ident.Identifier) ([]model.Edge, error)

	// BulkInsert applies every item atomically, skipping (not erroring on)
	// items whose preconditions fail, and reports how many of each
	// happened.
	BulkInsert(items []model.BulkItem) (applied, skipped int, err error)

	// DeleteBatch and SetPropertiesBatch apply a mutation to every member of
	// a query's evaluated result atomically (spec §4.6: set_properties and
	// delete "evaluate the query to the stream of owners and apply the
	// mutation to each").
	DeleteBatch(vertexIDs []uuid.UUID, edges []model.Edge) error
	SetPropertiesBatch(vertexIDs []uuid.UUID, edges []model.Edge, name ident.Identifier, v value.Value) error

	// Sync persists the store to stable storage (spec §4.4/§4.5).
	Sync() error

	// Close releases the store's resources.
	Close() error
}
