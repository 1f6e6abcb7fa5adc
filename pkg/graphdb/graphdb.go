// Package graphdb provides the top-level database facade (component C7):
// create_vertex, create_vertex_from_type, create_edge, bulk_insert, get,
// delete, set_properties, index_property, and sync, wrapping a
// graphstore.Store and a queryeval evaluator.
//
// Grounded on the teacher's pkg/nornicdb.DB, which likewise wraps a
// storage.Engine behind a thin set of create/get/delete/bulk methods plus a
// schema-index call, rather than exposing the storage interface directly to
// callers.
package graphdb

import (
	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/graphstore"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/query"
	"github.com/mimirgraph/pgraph/pkg/queryeval"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// Database is the embeddable facade over a storage backend.
type Database struct {
	store graphstore.Store
}

// New wraps store in a Database. store may be either backend
// (graphstore/memory or graphstore/kv) — the facade is storage-agnostic.
func New(store graphstore.Store) *Database {
	return &Database{store: store}
}

// CreateVertex inserts v, reporting false without error if v.ID already
// exists (spec §3).
func (db *Database) CreateVertex(v model.Vertex) (bool, error) {
	return db.store.CreateVertex(v)
}

// CreateVertexFromType allocates a fresh vertex of type t and inserts it.
// The freshly generated id makes the insert collide only in the
// astronomically unlikely case of a UUIDv4 collision, which is reported as
// an Io error rather than silently retried.
func (db *Database) CreateVertexFromType(t ident.Identifier) (model.Vertex, error) {
	v := model.NewVertex(t)
	ok, err := db.store.CreateVertex(v)
	if err != nil {
		return model.Vertex{}, err
	}
	if !ok {
		return model.Vertex{}, pgerr.Iof(nil, "vertex id collision on creation")
	}
	return v, nil
}

// CreateEdge inserts e, reporting false without error if either endpoint
// vertex is absent or the edge already exists (spec §3).
func (db *Database) CreateEdge(e model.Edge) (bool, error) {
	return db.store.CreateEdge(e)
}

// DeleteVertex removes a vertex and cascades to its incident edges and all
// properties they and it own (spec §3 invariant 3).
func (db *Database) DeleteVertex(id uuid.UUID) error {
	return db.store.DeleteVertex(id)
}

// DeleteEdge removes an edge and the properties it owns.
func (db *Database) DeleteEdge(e model.Edge) error {
	return db.store.DeleteEdge(e)
}

// BulkInsert applies every item atomically with respect to storage
// visibility, skipping (never erroring on) items whose preconditions fail,
// and reports how many of each (SPEC_FULL.md §9).
func (db *Database) BulkInsert(items []model.BulkItem) (applied, skipped int, err error) {
	return db.store.BulkInsert(items)
}

// Get evaluates q and returns its ordered result (component C6).
func (db *Database) Get(q *query.Query) ([]queryeval.Output, error) {
	return queryeval.Evaluate(db.store, q)
}

// Delete evaluates q to its stream of vertex/edge owners and removes every
// one of them atomically (spec §4.6). q must have vertex or edge shape —
// a property-query or count-query has nothing a deletion could apply to.
func (db *Database) Delete(q *query.Query) error {
	vertexIDs, edges, err := db.resolveOwners(q)
	if err != nil {
		return err
	}
	return db.store.DeleteBatch(vertexIDs, edges)
}

// SetProperties evaluates q to its stream of vertex/edge owners and sets
// (name, v) on every one of them atomically (spec §4.6), rejecting a null
// value. q must have vertex or edge shape.
func (db *Database) SetProperties(q *query.Query, name ident.Identifier, v value.Value) error {
	vertexIDs, edges, err := db.resolveOwners(q)
	if err != nil {
		return err
	}
	return db.store.SetPropertiesBatch(vertexIDs, edges, name, v)
}

// resolveOwners evaluates q and splits its result into the vertex ids and
// edges it names, for the bulk mutations spec §4.6 describes.
func (db *Database) resolveOwners(q *query.Query) ([]uuid.UUID, []model.Edge, error) {
	switch q.Shape() {
	case query.ShapeVertices, query.ShapeEdges:
	default:
		return nil, nil, pgerr.Unsupportedf("graphdb: query has no vertex/edge owners to mutate")
	}

	out, err := queryeval.Evaluate(db.store, q)
	if err != nil {
		return nil, nil, err
	}

	var vertexIDs []uuid.UUID
	var edges []model.Edge
	for _, o := range out {
		switch o.Kind {
		case queryeval.OutputVertex:
			vertexIDs = append(vertexIDs, o.Vertex.ID)
		case queryeval.OutputEdge:
			edges = append(edges, o.Edge)
		}
	}
	return vertexIDs, edges, nil
}

// SetVertexProperty sets a (vertex, name) property, rejecting a null value
// (spec §7).
func (db *Database) SetVertexProperty(id uuid.UUID, name ident.Identifier, v value.Value) error {
	return db.store.SetVertexProperty(id, name, v)
}

// DeleteVertexProperty removes a (vertex, name) property, a no-op if absent.
func (db *Database) DeleteVertexProperty(id uuid.UUID, name ident.Identifier) error {
	return db.store.DeleteVertexProperty(id, name)
}

// SetEdgeProperty sets an (edge, name) property, rejecting a null value
// (spec §7).
func (db *Database) SetEdgeProperty(e model.Edge, name ident.Identifier, v value.Value) error {
	return db.store.SetEdgeProperty(e, name, v)
}

// DeleteEdgeProperty removes an (edge, name) property, a no-op if absent.
func (db *Database) DeleteEdgeProperty(e model.Edge, name ident.Identifier) error {
	return db.store.DeleteEdgeProperty(e, name)
}

// IndexProperty makes name queryable by value/presence, back-filling from
// every existing vertex/edge property already named name (spec §4.6). A
// no-op if name is already indexed.
func (db *Database) IndexProperty(name ident.Identifier) error {
	return db.store.IndexProperty(name)
}

// IsIndexed reports whether name has been indexed.
func (db *Database) IsIndexed(name ident.Identifier) bool {
	return db.store.IsIndexed(name)
}

// Sync persists the database to stable storage.
func (db *Database) Sync() error {
	return db.store.Sync()
}

// Close releases the underlying storage backend's resources.
func (db *Database) Close() error {
	return db.store.Close()
}
