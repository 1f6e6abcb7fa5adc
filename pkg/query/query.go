// Package query implements the composable query AST (spec §4.2).
//
// A Query is a closed sum of variants distinguished by Kind; evaluation
// (package queryeval) is a switch over Kind, not virtual dispatch, so the
// compiler's exhaustiveness checking on the switch gives the same leverage
// a closed sum gets in a language with real sum types (spec §9 "Query AST
// dispatch"). Builder functions validate that a stage's input shape is one
// its predecessor can actually produce, rejecting bad compositions (a Count
// feeding a Pipe, say) with an Unsupported error at construction time rather
// than deferring the failure to evaluation.
package query

import (
	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// DefaultLimit is the implementation maximum applied when a range or pipe
// query's limit is not explicitly set.
const DefaultLimit = 1 << 20

// Kind discriminates the Query variants.
type Kind int

const (
	KindAllVertex Kind = iota
	KindRangeVertex
	KindSpecificVertex
	KindAllEdge
	KindSpecificEdge
	KindVertexPropertyPresence
	KindVertexPropertyValue
	KindEdgePropertyPresence
	KindEdgePropertyValue
	KindPipe
	KindPipePropertyPresence
	KindPipePropertyValue
	KindPipeProperty
	KindCount
	KindInclude
)

// Shape is the type of output a Query variant produces, used to validate
// that a stage is fed a composable predecessor.
type Shape int

const (
	ShapeVertices Shape = iota
	ShapeEdges
	ShapeVertexProperties
	ShapeEdgeProperties
	ShapeCount
)

// Query is one node of the query AST. Exactly the fields relevant to Kind
// are populated; see the variant builder functions below for which.
type Query struct {
	Kind Kind

	// RangeVertex
	StartID  uuid.UUID
	HasStart bool
	T        ident.Identifier
	HasT     bool
	Limit    uint64

	// SpecificVertex / SpecificEdge
	VertexIDs []uuid.UUID
	Edges     []model.Edge

	// *WithPropertyPresence / *WithPropertyValue / Pipe*Property*
	PropertyName ident.Identifier
	Value        value.Value
	Exists       bool // PipePropertyPresence: keep items where the property exists iff Exists
	PropEqual    bool // PipePropertyValue: keep items where property == Value iff PropEqual

	// Pipe
	Direction model.Direction

	// PipeProperty: zero Identifier (HasPropertyName=false) means "all
	// properties".
	HasPropertyName bool

	Inner *Query
}

// Shape reports the output shape of q, recursing through Inner where
// relevant. It never errors: shape-incompatibility is caught by the builder
// functions at construction time, not here.
func (q *Query) Shape() Shape {
	switch q.Kind {
	case KindAllVertex, KindRangeVertex, KindSpecificVertex,
		KindVertexPropertyPresence, KindVertexPropertyValue:
		return ShapeVertices
	case KindAllEdge, KindSpecificEdge,
		KindEdgePropertyPresence, KindEdgePropertyValue:
		return ShapeEdges
	case KindPipe:
		if q.Inner.Shape() == ShapeVertices {
			return ShapeEdges
		}
		return ShapeVertices
	case KindPipePropertyPresence, KindPipePropertyValue:
		return q.Inner.Shape()
	case KindPipeProperty:
		if q.Inner.Shape() == ShapeVertices {
			return ShapeVertexProperties
		}
		return ShapeEdgeProperties
	case KindCount:
		return ShapeCount
	case KindInclude:
		return q.Inner.Shape()
	default:
		return ShapeVertices
	}
}

func requireShape(q *Query, allowed ...Shape) error {
	s := q.Shape()
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return pgerr.Unsupportedf("query stage cannot consume a predecessor of shape %v", s)
}

// AllVertex matches every vertex.
func AllVertex() *Query { return &Query{Kind: KindAllVertex, Limit: DefaultLimit} }

// AllEdge matches every edge.
func AllEdge() *Query { return &Query{Kind: KindAllEdge, Limit: DefaultLimit} }

// RangeVertexOption configures a RangeVertex query.
type RangeVertexOption func(*Query)

// WithStartID sets the inclusive lower bound on vertex id.
func WithStartID(id uuid.UUID) RangeVertexOption {
	return func(q *Query) { q.StartID = id; q.HasStart = true }
}

// WithType filters a RangeVertex by vertex type.
func WithType(t ident.Identifier) RangeVertexOption {
	return func(q *Query) { q.T = t; q.HasT = true }
}

// WithLimit overrides DefaultLimit, including to 0 (which yields an empty
// result per spec §8 boundary behaviors).
func WithLimit(n uint64) RangeVertexOption {
	return func(q *Query) { q.Limit = n }
}

// RangeVertex matches vertices whose id is >= start_id (or every vertex if
// no start is given), optionally filtered by type, truncated to limit.
func RangeVertex(opts ...RangeVertexOption) *Query {
	q := &Query{Kind: KindRangeVertex, Limit: DefaultLimit}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SpecificVertex looks up a fixed set of vertices, skipping ids that do not
// exist.
func SpecificVertex(ids []uuid.UUID) *Query {
	return &Query{Kind: KindSpecificVertex, VertexIDs: ids, Limit: DefaultLimit}
}

// SpecificEdge looks up a fixed set of edges, skipping triples that do not
// exist.
func SpecificEdge(edges []model.Edge) *Query {
	return &Query{Kind: KindSpecificEdge, Edges: edges, Limit: DefaultLimit}
}

// VertexWithPropertyPresence matches every vertex with property name set.
// Requires name indexed at evaluation time, else NotIndexed.
func VertexWithPropertyPresence(name ident.Identifier) *Query {
	return &Query{Kind: KindVertexPropertyPresence, PropertyName: name, Limit: DefaultLimit}
}

// VertexWithPropertyValue matches every vertex whose property name equals
// v. Requires name indexed at evaluation time.
func VertexWithPropertyValue(name ident.Identifier, v value.Value) *Query {
	return &Query{Kind: KindVertexPropertyValue, PropertyName: name, Value: v, Limit: DefaultLimit}
}

// EdgeWithPropertyPresence is the edge-symmetric form of
// VertexWithPropertyPresence.
func EdgeWithPropertyPresence(name ident.Identifier) *Query {
	return &Query{Kind: KindEdgePropertyPresence, PropertyName: name, Limit: DefaultLimit}
}

// EdgeWithPropertyValue is the edge-symmetric form of
// VertexWithPropertyValue.
func EdgeWithPropertyValue(name ident.Identifier, v value.Value) *Query {
	return &Query{Kind: KindEdgePropertyValue, PropertyName: name, Value: v, Limit: DefaultLimit}
}

// PipeOption configures a Pipe query.
type PipeOption func(*Query)

// PipeWithType filters the emitted edges (vertex->edge direction only) by
// edge type.
func PipeWithType(t ident.Identifier) PipeOption {
	return func(q *Query) { q.T = t; q.HasT = true }
}

// PipeWithLimit overrides DefaultLimit for a Pipe stage.
func PipeWithLimit(n uint64) PipeOption {
	return func(q *Query) { q.Limit = n }
}

// Pipe builds a Pipe stage: if inner yields vertices, it emits edges
// incident to those vertices in direction dir (optionally filtered by
// type); if inner yields edges, it emits the vertex at the endpoint named
// by dir. Returns Unsupported if inner's shape is neither vertices nor
// edges (e.g. inner is a Count).
func Pipe(inner *Query, dir model.Direction, opts ...PipeOption) (*Query, error) {
	if err := requireShape(inner, ShapeVertices, ShapeEdges); err != nil {
		return nil, err
	}
	q := &Query{Kind: KindPipe, Inner: inner, Direction: dir, Limit: DefaultLimit}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// PipePropertyPresence filters inner's output by whether each item has
// property name set (exists=true keeps items that have it, false keeps
// items that don't). Requires inner to yield vertices or edges.
func PipePropertyPresence(inner *Query, name ident.Identifier, exists bool) (*Query, error) {
	if err := requireShape(inner, ShapeVertices, ShapeEdges); err != nil {
		return nil, err
	}
	return &Query{Kind: KindPipePropertyPresence, Inner: inner, PropertyName: name, Exists: exists, Limit: DefaultLimit}, nil
}

// PipePropertyValue filters inner's output by equality (equal=true) or
// inequality (equal=false, the set difference of inner minus the index
// lookup) of property name to v. Requires inner to yield vertices or
// edges.
func PipePropertyValue(inner *Query, name ident.Identifier, v value.Value, equal bool) (*Query, error) {
	if err := requireShape(inner, ShapeVertices, ShapeEdges); err != nil {
		return nil, err
	}
	return &Query{Kind: KindPipePropertyValue, Inner: inner, PropertyName: name, Value: v, PropEqual: equal, Limit: DefaultLimit}, nil
}

// PipeProperty converts a stream of vertices/edges into their properties;
// if name is nil, all properties are returned, else only that one.
func PipeProperty(inner *Query, name *ident.Identifier) (*Query, error) {
	if err := requireShape(inner, ShapeVertices, ShapeEdges); err != nil {
		return nil, err
	}
	q := &Query{Kind: KindPipeProperty, Inner: inner, Limit: DefaultLimit}
	if name != nil {
		q.PropertyName = *name
		q.HasPropertyName = true
	}
	return q, nil
}

// Count reduces inner to its cardinality. Any inner shape is accepted; a
// Count of a Count is permitted (it simply reports 1, the cardinality of a
// single Count result).
func Count(inner *Query) *Query {
	return &Query{Kind: KindCount, Inner: inner, Limit: DefaultLimit}
}

// Include runs inner and keeps its output as a separate result alongside
// subsequent stages chained from it in the same evaluation call.
func Include(inner *Query) *Query {
	return &Query{Kind: KindInclude, Inner: inner, Limit: DefaultLimit}
}
