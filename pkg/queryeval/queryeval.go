// Package queryeval evaluates a query.Query against a graphstore.Store
// (component C6). Evaluation is a plain switch over query.Kind rather than
// virtual dispatch per variant — the same tagged-dispatch shape the teacher
// uses for its own transaction operations in pkg/storage/transaction.go —
// so the compiler's switch-exhaustiveness checking stands in for the
// closed-sum-type checking spec §9 asks for.
package queryeval

import (
	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/graphstore"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/query"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// OutputKind discriminates the variants an evaluation can produce.
type OutputKind int

const (
	OutputVertex OutputKind = iota
	OutputEdge
	OutputVertexProperty
	OutputEdgeProperty
	OutputCount
)

// Output is one item of an evaluation result. Exactly the field matching
// Kind is populated.
type Output struct {
	Kind           OutputKind
	Vertex         model.Vertex
	Edge           model.Edge
	VertexProperty model.VertexProperty
	EdgeProperty   model.EdgeProperty
	Count          uint64
}

// Evaluate runs q against s and returns its ordered result (spec §4.3):
// ascending key order from the underlying store, pipe limits applied after
// any type filter, empty-incidence pipe stages yielding no error, and
// index-dependent predicates surfacing NotIndexed when their property name
// was never indexed.
//
// Include composition (spec §4.3, §8 scenario 6) needs more than the final
// value: Include marks its result so that whichever stage next consumes it
// preserves a copy in the returned sequence before transforming it, and that
// preserved-ness carries forward through any further pipe stages until a
// reducer like Count absorbs it. evalNode carries that bookkeeping; Evaluate
// is just its public, flattened entry point.
func Evaluate(s graphstore.Store, q *query.Query) ([]Output, error) {
	value, preserved, _, err := evalNode(s, q)
	if err != nil {
		return nil, err
	}
	return append(preserved, value...), nil
}

// evalNode returns the value a wrapping stage should consume, any Include
// copies accumulated so far in evaluation order, and whether value itself
// was produced (directly or transitively) by an Include and so must be
// preserved by whatever pops it next.
func evalNode(s graphstore.Store, q *query.Query) (value []Output, preserved []Output, tagged bool, err error) {
	switch q.Kind {
	case query.KindAllVertex:
		value, err = evalRangeVertex(s, uuid.UUID{}, false, nil, q.Limit)
		return value, nil, false, err
	case query.KindRangeVertex:
		var t *ident.Identifier
		if q.HasT {
			t = &q.T
		}
		value, err = evalRangeVertex(s, q.StartID, q.HasStart, t, q.Limit)
		return value, nil, false, err
	case query.KindSpecificVertex:
		vs, err := s.SpecificVertices(q.VertexIDs)
		if err != nil {
			return nil, nil, false, err
		}
		return vertexOutputs(vs), nil, false, nil
	case query.KindAllEdge:
		es, err := s.AllEdges(q.Limit)
		if err != nil {
			return nil, nil, false, err
		}
		return edgeOutputs(es), nil, false, nil
	case query.KindSpecificEdge:
		es, err := s.SpecificEdges(q.Edges)
		if err != nil {
			return nil, nil, false, err
		}
		return edgeOutputs(es), nil, false, nil
	case query.KindVertexPropertyPresence:
		ids, err := s.VerticesWithPropertyPresence(q.PropertyName)
		if err != nil {
			return nil, nil, false, err
		}
		value, err = fetchVertices(s, ids, q.Limit)
		return value, nil, false, err
	case query.KindVertexPropertyValue:
		ids, err := s.VerticesWithPropertyValue(q.PropertyName, q.Value)
		if err != nil {
			return nil, nil, false, err
		}
		value, err = fetchVertices(s, ids, q.Limit)
		return value, nil, false, err
	case query.KindEdgePropertyPresence:
		es, err := s.EdgesWithPropertyPresence(q.PropertyName)
		if err != nil {
			return nil, nil, false, err
		}
		return truncateEdges(edgeOutputs(es), q.Limit), nil, false, nil
	case query.KindEdgePropertyValue:
		es, err := s.EdgesWithPropertyValue(q.PropertyName, q.Value)
		if err != nil {
			return nil, nil, false, err
		}
		return truncateEdges(edgeOutputs(es), q.Limit), nil, false, nil
	case query.KindPipe:
		return evalPipe(s, q)
	case query.KindPipePropertyPresence:
		return evalPipePropertyPresence(s, q)
	case query.KindPipePropertyValue:
		return evalPipePropertyValue(s, q)
	case query.KindPipeProperty:
		return evalPipeProperty(s, q)
	case query.KindCount:
		innerValue, innerPreserved, innerTagged, err := evalNode(s, q.Inner)
		if err != nil {
			return nil, nil, false, err
		}
		if innerTagged {
			innerPreserved = append(innerPreserved, innerValue...)
		}
		return []Output{{Kind: OutputCount, Count: uint64(len(innerValue))}}, innerPreserved, false, nil
	case query.KindInclude:
		innerValue, innerPreserved, _, err := evalNode(s, q.Inner)
		if err != nil {
			return nil, nil, false, err
		}
		return innerValue, innerPreserved, true, nil
	default:
		return nil, nil, false, pgerr.Unsupportedf("queryeval: unknown query kind %d", q.Kind)
	}
}

// popInner evaluates q.Inner and, if its value was Include-tagged, adds a
// preserved copy before the caller transforms it (spec §4.3: "if the popped
// value was produced by an Include, the original is preserved"). The
// returned tagged bit carries forward so a chain of pipe stages downstream
// of an Include all keep contributing their own preserved copies in turn.
func popInner(s graphstore.Store, q *query.Query) (inner []Output, preserved []Output, tagged bool, err error) {
	inner, preserved, tagged, err = evalNode(s, q.Inner)
	if err != nil {
		return nil, nil, false, err
	}
	if tagged {
		preserved = append(preserved, inner...)
	}
	return inner, preserved, tagged, nil
}

func evalRangeVertex(s graphstore.Store, start uuid.UUID, hasStart bool, t *ident.Identifier, limit uint64) ([]Output, error) {
	vs, err := s.RangeVertices(start, hasStart, t, limit)
	if err != nil {
		return nil, err
	}
	return vertexOutputs(vs), nil
}

func vertexOutputs(vs []model.Vertex) []Output {
	out := make([]Output, len(vs))
	for i, v := range vs {
		out[i] = Output{Kind: OutputVertex, Vertex: v}
	}
	return out
}

func edgeOutputs(es []model.Edge) []Output {
	out := make([]Output, len(es))
	for i, e := range es {
		out[i] = Output{Kind: OutputEdge, Edge: e}
	}
	return out
}

func truncateEdges(out []Output, limit uint64) []Output {
	if uint64(len(out)) > limit {
		return out[:limit]
	}
	return out
}

// fetchVertices resolves index-returned ids back to full vertices, in the
// ascending order the index already returned them in, truncated to limit.
func fetchVertices(s graphstore.Store, ids []uuid.UUID, limit uint64) ([]Output, error) {
	var out []Output
	for _, id := range ids {
		if uint64(len(out)) >= limit {
			break
		}
		v, ok, err := s.GetVertex(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Output{Kind: OutputVertex, Vertex: v})
	}
	return out, nil
}

// evalPipe implements the Pipe stage: vertices in, incident edges out (or
// vice versa), in direction q.Direction, filtered by q.T if set, truncated
// to q.Limit. Per spec §4.3, an input item with no matching incidence
// simply contributes nothing — it is not an error.
func evalPipe(s graphstore.Store, q *query.Query) ([]Output, []Output, bool, error) {
	inner, preserved, tagged, err := popInner(s, q)
	if err != nil {
		return nil, nil, false, err
	}

	var t *ident.Identifier
	if q.HasT {
		t = &q.T
	}

	var out []Output
	for _, item := range inner {
		if uint64(len(out)) >= q.Limit {
			break
		}
		remaining := q.Limit - uint64(len(out))
		switch item.Kind {
		case OutputVertex:
			es, err := s.RangeEdgesByDirection(item.Vertex.ID, q.Direction, t, remaining)
			if err != nil {
				return nil, nil, false, err
			}
			out = append(out, edgeOutputs(es)...)
		case OutputEdge:
			var endpoint uuid.UUID
			if q.Direction == model.Outbound {
				endpoint = item.Edge.OutboundID
			} else {
				endpoint = item.Edge.InboundID
			}
			v, ok, err := s.GetVertex(endpoint)
			if err != nil {
				return nil, nil, false, err
			}
			if !ok {
				continue
			}
			out = append(out, Output{Kind: OutputVertex, Vertex: v})
		default:
			return nil, nil, false, pgerr.Unsupportedf("queryeval: pipe input item has no vertex/edge shape")
		}
	}
	if uint64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, preserved, tagged, nil
}

// evalPipePropertyPresence keeps (Exists=true) or drops (Exists=false) items
// that have q.PropertyName set, via a direct get — this predicate does not
// require the property to be indexed.
func evalPipePropertyPresence(s graphstore.Store, q *query.Query) ([]Output, []Output, bool, error) {
	inner, preserved, tagged, err := popInner(s, q)
	if err != nil {
		return nil, nil, false, err
	}
	var out []Output
	for _, item := range inner {
		has, err := itemHasProperty(s, item, q.PropertyName)
		if err != nil {
			return nil, nil, false, err
		}
		if has == q.Exists {
			out = append(out, item)
		}
	}
	return truncateEdges(out, q.Limit), preserved, tagged, nil
}

func itemHasProperty(s graphstore.Store, item Output, name ident.Identifier) (bool, error) {
	switch item.Kind {
	case OutputVertex:
		_, ok, err := s.GetVertexProperty(item.Vertex.ID, name)
		return ok, err
	case OutputEdge:
		_, ok, err := s.GetEdgeProperty(item.Edge, name)
		return ok, err
	default:
		return false, pgerr.Unsupportedf("queryeval: pipe-property input item has no vertex/edge shape")
	}
}

// evalPipePropertyValue implements equal=true (direct property-value
// comparison) and equal=false (set difference against the indexed-value
// lookup, so it requires the property to be indexed: spec §4.3 "equal=false
// is set difference against the index").
func evalPipePropertyValue(s graphstore.Store, q *query.Query) ([]Output, []Output, bool, error) {
	inner, preserved, tagged, err := popInner(s, q)
	if err != nil {
		return nil, nil, false, err
	}

	if q.PropEqual {
		var out []Output
		for _, item := range inner {
			ok, err := itemPropertyEquals(s, item, q.PropertyName, q.Value)
			if err != nil {
				return nil, nil, false, err
			}
			if ok {
				out = append(out, item)
			}
		}
		return truncateEdges(out, q.Limit), preserved, tagged, nil
	}

	excluded, err := indexedMatchSet(s, q)
	if err != nil {
		return nil, nil, false, err
	}
	var out []Output
	for _, item := range inner {
		if excluded[outputKey(item)] {
			continue
		}
		out = append(out, item)
	}
	return truncateEdges(out, q.Limit), preserved, tagged, nil
}

func itemPropertyEquals(s graphstore.Store, item Output, name ident.Identifier, want value.Value) (bool, error) {
	switch item.Kind {
	case OutputVertex:
		v, ok, err := s.GetVertexProperty(item.Vertex.ID, name)
		if err != nil || !ok {
			return false, err
		}
		return value.Equal(v, want), nil
	case OutputEdge:
		v, ok, err := s.GetEdgeProperty(item.Edge, name)
		if err != nil || !ok {
			return false, err
		}
		return value.Equal(v, want), nil
	default:
		return false, pgerr.Unsupportedf("queryeval: pipe-property input item has no vertex/edge shape")
	}
}

func indexedMatchSet(s graphstore.Store, q *query.Query) (map[string]bool, error) {
	shape := q.Inner.Shape()
	set := make(map[string]bool)
	if shape == query.ShapeVertices {
		ids, err := s.VerticesWithPropertyValue(q.PropertyName, q.Value)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			set[id.String()] = true
		}
		return set, nil
	}
	es, err := s.EdgesWithPropertyValue(q.PropertyName, q.Value)
	if err != nil {
		return nil, err
	}
	for _, e := range es {
		set[edgeKey(e)] = true
	}
	return set, nil
}

func outputKey(o Output) string {
	if o.Kind == OutputVertex {
		return o.Vertex.ID.String()
	}
	return edgeKey(o.Edge)
}

func edgeKey(e model.Edge) string {
	return e.OutboundID.String() + "/" + e.T.String() + "/" + e.InboundID.String()
}

// evalPipeProperty converts a stream of vertices/edges into their
// properties: a single named one (skipping items that lack it), or every
// property the entity owns when q.HasPropertyName is false.
func evalPipeProperty(s graphstore.Store, q *query.Query) ([]Output, []Output, bool, error) {
	inner, preserved, tagged, err := popInner(s, q)
	if err != nil {
		return nil, nil, false, err
	}
	var out []Output
	for _, item := range inner {
		if uint64(len(out)) >= q.Limit {
			break
		}
		switch item.Kind {
		case OutputVertex:
			if q.HasPropertyName {
				v, ok, err := s.GetVertexProperty(item.Vertex.ID, q.PropertyName)
				if err != nil {
					return nil, nil, false, err
				}
				if !ok {
					continue
				}
				out = append(out, Output{Kind: OutputVertexProperty, VertexProperty: model.VertexProperty{ID: item.Vertex.ID, Name: q.PropertyName, Value: v}})
				continue
			}
			props, err := s.VertexProperties(item.Vertex.ID)
			if err != nil {
				return nil, nil, false, err
			}
			for _, p := range props {
				out = append(out, Output{Kind: OutputVertexProperty, VertexProperty: p})
			}
		case OutputEdge:
			if q.HasPropertyName {
				v, ok, err := s.GetEdgeProperty(item.Edge, q.PropertyName)
				if err != nil {
					return nil, nil, false, err
				}
				if !ok {
					continue
				}
				out = append(out, Output{Kind: OutputEdgeProperty, EdgeProperty: model.EdgeProperty{Edge: item.Edge, Name: q.PropertyName, Value: v}})
				continue
			}
			props, err := s.EdgeProperties(item.Edge)
			if err != nil {
				return nil, nil, false, err
			}
			for _, p := range props {
				out = append(out, Output{Kind: OutputEdgeProperty, EdgeProperty: p})
			}
		default:
			return nil, nil, false, pgerr.Unsupportedf("queryeval: pipe-property input item has no vertex/edge shape")
		}
	}
	if uint64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out, preserved, tagged, nil
}
