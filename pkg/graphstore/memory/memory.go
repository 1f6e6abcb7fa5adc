// Package memory implements the fully in-memory storage backend (spec
// §4.4): ordered maps backing all entity and index tables, one reader/
// writer lock protecting the whole datastore, and a snapshot-image file for
// persistence.
//
// Grounded on the teacher's MemoryEngine (pkg/storage/memory.go) — a
// map-of-maps graph store behind one sync.RWMutex with auxiliary index
// maps for fast lookup — generalized to this spec's seven-table model
// (vertex/edge tables, their property tables, and the two property-value
// index tables) and to genuinely ordered iteration, which the teacher's
// bare Go maps don't provide and this design's range queries need.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/clock"
	"github.com/mimirgraph/pgraph/pkg/graphstore"
	"github.com/mimirgraph/pgraph/pkg/graphstore/enckey"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// compile-time assertion that Store implements graphstore.Store.
var _ graphstore.Store = (*Store)(nil)

// Store is the in-memory graphstore.Store implementation.
type Store struct {
	mu     sync.RWMutex
	clk    clock.Clock
	path   string // empty for a pure in-memory store with no backing file
	closed bool

	vertices    map[uuid.UUID]ident.Identifier
	vertexOrder orderedIndex

	edgesFwd     map[string]model.Edge // forward key -> edge
	edgesFwdIdx  orderedIndex
	edgesRevKeys map[string]struct{} // reverse key presence only

	vprops map[string]value.Value // VertexPropertyKey -> value
	eprops map[string]value.Value // EdgePropertyKey -> value

	indexed map[string]struct{} // indexed property names

	vpropValues    map[string]map[string]map[uuid.UUID]struct{} // name -> canonical(value) -> owners
	vpropAllOwners map[string]map[uuid.UUID]struct{}             // name -> all owners (presence)
	epropValues    map[string]map[string]map[model.Edge]struct{}
	epropAllOwners map[string]map[model.Edge]struct{}
}

// Option configures a new Store.
type Option func(*Store)

// WithClock overrides the default (time.Now) clock, e.g. for deterministic
// tests.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clk = c }
}

func newEmpty(opts ...Option) *Store {
	s := &Store{
		clk:            clock.System{},
		vertices:       make(map[uuid.UUID]ident.Identifier),
		edgesFwd:       make(map[string]model.Edge),
		edgesRevKeys:   make(map[string]struct{}),
		vprops:         make(map[string]value.Value),
		eprops:         make(map[string]value.Value),
		indexed:        make(map[string]struct{}),
		vpropValues:    make(map[string]map[string]map[uuid.UUID]struct{}),
		vpropAllOwners: make(map[string]map[uuid.UUID]struct{}),
		epropValues:    make(map[string]map[string]map[model.Edge]struct{}),
		epropAllOwners: make(map[string]map[model.Edge]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default constructs an empty in-memory store with no backing file.
func Default(opts ...Option) *Store { return newEmpty(opts...) }

// Create allocates an empty store remembering path, so a later Sync()
// writes to it.
func Create(path string, opts ...Option) *Store {
	s := newEmpty(opts...)
	s.path = path
	return s
}

// Read deserializes a snapshot image from path at open (spec §4.4).
func Read(path string, opts ...Option) (*Store, error) {
	s := newEmpty(opts...)
	s.path = path
	if err := s.load(path); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) checkOpen() error {
	if s.closed {
		return pgerr.Iof(nil, "store is closed")
	}
	return nil
}

// CreateVertex implements graphstore.Store.
func (s *Store) CreateVertex(v model.Vertex) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	if _, exists := s.vertices[v.ID]; exists {
		return false, nil
	}
	s.vertices[v.ID] = v.T
	s.vertexOrder.insert(enckey.VertexKey(v.ID))
	return true, nil
}

// GetVertex implements graphstore.Store.
func (s *Store) GetVertex(id uuid.UUID) (model.Vertex, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.vertices[id]
	if !ok {
		return model.Vertex{}, false, nil
	}
	return model.Vertex{ID: id, T: t}, true, nil
}

// DeleteVertex implements graphstore.Store, cascading to incident edges and
// all properties they and the vertex own (spec §3 invariant 3).
func (s *Store) DeleteVertex(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteVertexLocked(id)
	return nil
}

func (s *Store) deleteVertexLocked(id uuid.UUID) {
	if _, ok := s.vertices[id]; !ok {
		return
	}

	// Cascade: every edge incident to id, in either direction.
	for fwdKey, e := range s.edgesFwd {
		if e.OutboundID == id || e.InboundID == id {
			s.removeEdgeLocked(fwdKey, e)
		}
	}

	// Vertex properties.
	prefix := id[:]
	for key := range s.vprops {
		if len(key) >= 16 && string(prefix) == key[:16] {
			name := vertexPropertyName(key)
			s.unindexVertexPropertyLocked(id, name, s.vprops[key])
			delete(s.vprops, key)
		}
	}

	delete(s.vertices, id)
	s.vertexOrder.remove(enckey.VertexKey(id))
}

func vertexPropertyName(key string) string {
	if len(key) < 20 {
		return ""
	}
	n := int(uint32(key[16])<<24 | uint32(key[17])<<16 | uint32(key[18])<<8 | uint32(key[19]))
	if len(key) != 20+n {
		return ""
	}
	return key[20:]
}

func (s *Store) removeEdgeLocked(fwdKey string, e model.Edge) {
	revKey := string(enckey.EdgeReverseKey(e.InboundID, e.T.String(), e.OutboundID))
	delete(s.edgesFwd, fwdKey)
	s.edgesFwdIdx.remove([]byte(fwdKey))
	delete(s.edgesRevKeys, revKey)

	prefix := string(enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	for key := range s.eprops {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			name := edgePropertyName(key, len(prefix))
			s.unindexEdgePropertyLocked(e, name, s.eprops[key])
			delete(s.eprops, key)
		}
	}
}

func edgePropertyName(key string, prefixLen int) string {
	rest := key[prefixLen:]
	if len(rest) < 4 {
		return ""
	}
	n := int(uint32(rest[0])<<24 | uint32(rest[1])<<16 | uint32(rest[2])<<8 | uint32(rest[3]))
	if len(rest) != 4+n {
		return ""
	}
	return rest[4:]
}

// RangeVertices implements graphstore.Store.
func (s *Store) RangeVertices(start uuid.UUID, hasStart bool, t *ident.Identifier, limit uint64) ([]model.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	var startKey []byte
	if hasStart {
		startKey = enckey.VertexKey(start)
	}
	var out []model.Vertex
	for _, k := range s.vertexOrder.from(startKey, ^uint64(0)) {
		id, err := uuid.FromBytes([]byte(k))
		if err != nil {
			continue
		}
		vt := s.vertices[id]
		if t != nil && !vt.Equal(*t) {
			continue
		}
		out = append(out, model.Vertex{ID: id, T: vt})
		if uint64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// SpecificVertices implements graphstore.Store.
func (s *Store) SpecificVertices(ids []uuid.UUID) ([]model.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Vertex
	for _, id := range ids {
		if t, ok := s.vertices[id]; ok {
			out = append(out, model.Vertex{ID: id, T: t})
		}
	}
	return out, nil
}

// CreateEdge implements graphstore.Store. Returns false without error if
// either endpoint vertex is absent (spec §3). The edge's UpdatedAt is
// stamped from the store's clock at creation time.
func (s *Store) CreateEdge(e model.Edge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.UpdatedAt = s.clk.Now()
	return s.createEdgeLocked(e)
}

func (s *Store) createEdgeLocked(e model.Edge) (bool, error) {
	if _, ok := s.vertices[e.OutboundID]; !ok {
		return false, nil
	}
	if _, ok := s.vertices[e.InboundID]; !ok {
		return false, nil
	}
	fwdKey := string(enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	if _, exists := s.edgesFwd[fwdKey]; exists {
		return false, nil
	}
	revKey := string(enckey.EdgeReverseKey(e.InboundID, e.T.String(), e.OutboundID))
	s.edgesFwd[fwdKey] = e
	s.edgesFwdIdx.insert([]byte(fwdKey))
	s.edgesRevKeys[revKey] = struct{}{}
	return true, nil
}

// DeleteEdge implements graphstore.Store.
func (s *Store) DeleteEdge(e model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteEdgeLocked(e)
	return nil
}

func (s *Store) deleteEdgeLocked(e model.Edge) {
	fwdKey := string(enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	if _, ok := s.edgesFwd[fwdKey]; !ok {
		return
	}
	s.removeEdgeLocked(fwdKey, e)
}

// AllEdges implements graphstore.Store.
func (s *Store) AllEdges(limit uint64) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	var out []model.Edge
	for _, k := range s.edgesFwdIdx.from(nil, limit) {
		out = append(out, s.edgesFwd[k])
	}
	return out, nil
}

// SpecificEdges implements graphstore.Store.
func (s *Store) SpecificEdges(edges []model.Edge) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Edge
	for _, e := range edges {
		fwdKey := string(enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
		if stored, ok := s.edgesFwd[fwdKey]; ok {
			out = append(out, stored)
		}
	}
	return out, nil
}

// RangeEdgesByDirection implements graphstore.Store: outbound direction
// scans the forward table prefixed by vertexID, inbound scans the reversed
// table. Iteration order is ascending key order of the table used, so a
// truncated result is deterministic (spec §4.3).
func (s *Store) RangeEdgesByDirection(vertexID uuid.UUID, dir model.Direction, t *ident.Identifier, limit uint64) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	var out []model.Edge
	if dir == model.Outbound {
		prefix := vertexID[:]
		for _, k := range s.edgesFwdIdx.fromPrefix(prefix, ^uint64(0)) {
			e := s.edgesFwd[k]
			if t != nil && !e.T.Equal(*t) {
				continue
			}
			out = append(out, e)
			if uint64(len(out)) >= limit {
				break
			}
		}
		return out, nil
	}

	// Inbound: scan the reversed key set, which only records presence, and
	// decode each key back to the edge triple.
	prefix := string(vertexID[:])
	var keys []string
	for k := range s.edgesRevKeys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sortStrings(keys)
	for _, k := range keys {
		in, typ, out2, ok := enckey.DecodeEdgeKey([]byte(k))
		if !ok {
			continue
		}
		e := model.Edge{OutboundID: out2, T: ident.NewUnchecked(typ), InboundID: in}
		if t != nil && !e.T.Equal(*t) {
			continue
		}
		fwdKey := string(enckey.EdgeForwardKey(out2, typ, in))
		if stored, ok := s.edgesFwd[fwdKey]; ok {
			e = stored
		}
		out = append(out, e)
		if uint64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// GetVertexProperty implements graphstore.Store.
func (s *Store) GetVertexProperty(id uuid.UUID, name ident.Identifier) (value.Value, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vprops[string(enckey.VertexPropertyKey(id, name.String()))]
	return v, ok, nil
}

// SetVertexProperty implements graphstore.Store, rejecting a null value
// early (spec §7).
func (s *Store) SetVertexProperty(id uuid.UUID, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setVertexPropertyLocked(id, name, v)
	return nil
}

func (s *Store) setVertexPropertyLocked(id uuid.UUID, name ident.Identifier, v value.Value) {
	key := string(enckey.VertexPropertyKey(id, name.String()))
	old, existed := s.vprops[key]
	s.vprops[key] = v
	if existed {
		s.unindexVertexPropertyLocked(id, name.String(), old)
	}
	s.indexVertexPropertyLocked(id, name.String(), v)
}

// DeleteVertexProperty implements graphstore.Store.
func (s *Store) DeleteVertexProperty(id uuid.UUID, name ident.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(enckey.VertexPropertyKey(id, name.String()))
	old, ok := s.vprops[key]
	if !ok {
		return nil
	}
	delete(s.vprops, key)
	s.unindexVertexPropertyLocked(id, name.String(), old)
	return nil
}

// GetEdgeProperty implements graphstore.Store.
func (s *Store) GetEdgeProperty(e model.Edge, name ident.Identifier) (value.Value, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.eprops[string(enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))]
	return v, ok, nil
}

// SetEdgeProperty implements graphstore.Store.
func (s *Store) SetEdgeProperty(e model.Edge, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setEdgePropertyLocked(e, name, v)
	return nil
}

func (s *Store) setEdgePropertyLocked(e model.Edge, name ident.Identifier, v value.Value) {
	key := string(enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))
	old, existed := s.eprops[key]
	s.eprops[key] = v
	if existed {
		s.unindexEdgePropertyLocked(e, name.String(), old)
	}
	s.indexEdgePropertyLocked(e, name.String(), v)
}

// DeleteEdgeProperty implements graphstore.Store.
func (s *Store) DeleteEdgeProperty(e model.Edge, name ident.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))
	old, ok := s.eprops[key]
	if !ok {
		return nil
	}
	delete(s.eprops, key)
	s.unindexEdgePropertyLocked(e, name.String(), old)
	return nil
}

func (s *Store) indexVertexPropertyLocked(id uuid.UUID, name string, v value.Value) {
	if _, ok := s.indexed[name]; !ok {
		return
	}
	canon := string(value.CanonicalBytes(v))
	if s.vpropValues[name] == nil {
		s.vpropValues[name] = make(map[string]map[uuid.UUID]struct{})
	}
	if s.vpropValues[name][canon] == nil {
		s.vpropValues[name][canon] = make(map[uuid.UUID]struct{})
	}
	s.vpropValues[name][canon][id] = struct{}{}
	if s.vpropAllOwners[name] == nil {
		s.vpropAllOwners[name] = make(map[uuid.UUID]struct{})
	}
	s.vpropAllOwners[name][id] = struct{}{}
}

func (s *Store) unindexVertexPropertyLocked(id uuid.UUID, name string, v value.Value) {
	if _, ok := s.indexed[name]; !ok {
		return
	}
	canon := string(value.CanonicalBytes(v))
	if m, ok := s.vpropValues[name][canon]; ok {
		delete(m, id)
		if len(m) == 0 {
			delete(s.vpropValues[name], canon)
		}
	}
	if m, ok := s.vpropAllOwners[name]; ok {
		delete(m, id)
	}
}

func (s *Store) indexEdgePropertyLocked(e model.Edge, name string, v value.Value) {
	if _, ok := s.indexed[name]; !ok {
		return
	}
	canon := string(value.CanonicalBytes(v))
	if s.epropValues[name] == nil {
		s.epropValues[name] = make(map[string]map[model.Edge]struct{})
	}
	if s.epropValues[name][canon] == nil {
		s.epropValues[name][canon] = make(map[model.Edge]struct{})
	}
	s.epropValues[name][canon][e] = struct{}{}
	if s.epropAllOwners[name] == nil {
		s.epropAllOwners[name] = make(map[model.Edge]struct{})
	}
	s.epropAllOwners[name][e] = struct{}{}
}

func (s *Store) unindexEdgePropertyLocked(e model.Edge, name string, v value.Value) {
	if _, ok := s.indexed[name]; !ok {
		return
	}
	canon := string(value.CanonicalBytes(v))
	if m, ok := s.epropValues[name][canon]; ok {
		delete(m, e)
		if len(m) == 0 {
			delete(s.epropValues[name], canon)
		}
	}
	if m, ok := s.epropAllOwners[name]; ok {
		delete(m, e)
	}
}

// VertexProperties implements graphstore.Store.
func (s *Store) VertexProperties(id uuid.UUID) ([]model.VertexProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.VertexProperty
	for _, key := range sortedMapKeys(s.vprops) {
		pid, name, ok := decodeVertexPropertyKey(key)
		if !ok || pid != id {
			continue
		}
		out = append(out, model.VertexProperty{ID: id, Name: ident.NewUnchecked(name), Value: s.vprops[key]})
	}
	return out, nil
}

// EdgeProperties implements graphstore.Store.
func (s *Store) EdgeProperties(e model.Edge) ([]model.EdgeProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.EdgeProperty
	for _, key := range sortedMapKeys(s.eprops) {
		pe, name, ok := decodeEdgePropertyKey(key)
		if !ok || !pe.Equal(e) {
			continue
		}
		out = append(out, model.EdgeProperty{Edge: e, Name: ident.NewUnchecked(name), Value: s.eprops[key]})
	}
	return out, nil
}

// IndexProperty implements graphstore.Store. Back-filling happens under the
// same write lock acquisition that adds name to the indexed set, so readers
// never observe a half-populated index (spec §4.6).
func (s *Store) IndexProperty(name ident.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := name.String()
	if _, ok := s.indexed[n]; ok {
		return nil
	}
	s.indexed[n] = struct{}{}

	for key, v := range s.vprops {
		id, propName, ok := decodeVertexPropertyKey(key)
		if !ok || propName != n {
			continue
		}
		s.indexVertexPropertyLocked(id, n, v)
	}
	for key, v := range s.eprops {
		e, propName, ok := decodeEdgePropertyKey(key)
		if !ok || propName != n {
			continue
		}
		s.indexEdgePropertyLocked(e, n, v)
	}
	return nil
}

func decodeVertexPropertyKey(key string) (uuid.UUID, string, bool) {
	var id uuid.UUID
	if len(key) < 20 {
		return id, "", false
	}
	copy(id[:], key[:16])
	n := int(uint32(key[16])<<24 | uint32(key[17])<<16 | uint32(key[18])<<8 | uint32(key[19]))
	if len(key) != 20+n {
		return id, "", false
	}
	return id, key[20:], true
}

func decodeEdgePropertyKey(key string) (model.Edge, string, bool) {
	out, typ, in, ok := enckey.DecodeEdgeKey([]byte(key))
	if !ok {
		return model.Edge{}, "", false
	}
	prefixLen := len(enckey.EdgeForwardKey(out, typ, in))
	name := edgePropertyName(key, prefixLen)
	return model.Edge{OutboundID: out, T: ident.NewUnchecked(typ), InboundID: in}, name, true
}

// IsIndexed implements graphstore.Store.
func (s *Store) IsIndexed(name ident.Identifier) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexed[name.String()]
	return ok
}

// VerticesWithPropertyValue implements graphstore.Store.
func (s *Store) VerticesWithPropertyValue(name ident.Identifier, v value.Value) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	if _, ok := s.indexed[n]; !ok {
		return nil, pgerr.NotIndexedf("property %q is not indexed", n)
	}
	canon := string(value.CanonicalBytes(v))
	owners := s.vpropValues[n][canon]
	return sortedVertexIDs(owners), nil
}

// VerticesWithPropertyPresence implements graphstore.Store.
func (s *Store) VerticesWithPropertyPresence(name ident.Identifier) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	if _, ok := s.indexed[n]; !ok {
		return nil, pgerr.NotIndexedf("property %q is not indexed", n)
	}
	return sortedVertexIDs(s.vpropAllOwners[n]), nil
}

// EdgesWithPropertyValue implements graphstore.Store.
func (s *Store) EdgesWithPropertyValue(name ident.Identifier, v value.Value) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	if _, ok := s.indexed[n]; !ok {
		return nil, pgerr.NotIndexedf("property %q is not indexed", n)
	}
	canon := string(value.CanonicalBytes(v))
	return sortedEdges(s.epropValues[n][canon]), nil
}

// EdgesWithPropertyPresence implements graphstore.Store.
func (s *Store) EdgesWithPropertyPresence(name ident.Identifier) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	if _, ok := s.indexed[n]; !ok {
		return nil, pgerr.NotIndexedf("property %q is not indexed", n)
	}
	return sortedEdges(s.epropAllOwners[n]), nil
}

func sortedVertexIDs(m map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && string(out[j-1][:]) > string(out[j][:]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func sortedEdges(m map[model.Edge]struct{}) []model.Edge {
	out := make([]model.Edge, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && edgeKeyOf(out[j-1]) > edgeKeyOf(out[j]); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func edgeKeyOf(e model.Edge) string {
	return string(enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
}

// BulkInsert implements graphstore.Store, applying every item under one
// write-lock acquisition.
func (s *Store) BulkInsert(items []model.BulkItem) (applied, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		switch item.Kind {
		case model.BulkVertex:
			if _, exists := s.vertices[item.Vertex.ID]; exists {
				skipped++
				continue
			}
			s.vertices[item.Vertex.ID] = item.Vertex.T
			s.vertexOrder.insert(enckey.VertexKey(item.Vertex.ID))
			applied++
		case model.BulkEdge:
			e := item.Edge
			e.UpdatedAt = s.clk.Now()
			ok, _ := s.createEdgeLocked(e)
			if ok {
				applied++
			} else {
				skipped++
			}
		case model.BulkVertexProperty:
			vp := item.VertexProperty
			v := value.FromAny(vp.Value)
			if v.IsNull() {
				skipped++
				continue
			}
			if _, ok := s.vertices[vp.ID]; !ok {
				skipped++
				continue
			}
			key := string(enckey.VertexPropertyKey(vp.ID, vp.Name.String()))
			old, existed := s.vprops[key]
			s.vprops[key] = v
			if existed {
				s.unindexVertexPropertyLocked(vp.ID, vp.Name.String(), old)
			}
			s.indexVertexPropertyLocked(vp.ID, vp.Name.String(), v)
			applied++
		case model.BulkEdgeProperty:
			ep := item.EdgeProperty
			v := value.FromAny(ep.Value)
			if v.IsNull() {
				skipped++
				continue
			}
			fwdKey := string(enckey.EdgeForwardKey(ep.Edge.OutboundID, ep.Edge.T.String(), ep.Edge.InboundID))
			if _, ok := s.edgesFwd[fwdKey]; !ok {
				skipped++
				continue
			}
			key := string(enckey.EdgePropertyKey(ep.Edge.OutboundID, ep.Edge.T.String(), ep.Edge.InboundID, ep.Name.String()))
			old, existed := s.eprops[key]
			s.eprops[key] = v
			if existed {
				s.unindexEdgePropertyLocked(ep.Edge, ep.Name.String(), old)
			}
			s.indexEdgePropertyLocked(ep.Edge, ep.Name.String(), v)
			applied++
		default:
			skipped++
		}
	}
	return applied, skipped, nil
}

// DeleteBatch implements graphstore.Store: removes every vertex (cascading
// to its incident edges and properties) and every edge under one write-lock
// acquisition, so the mutation is atomic with respect to storage visibility
// (spec §4.6's set_properties/delete-over-a-query-result semantics).
func (s *Store) DeleteBatch(vertexIDs []uuid.UUID, edges []model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range vertexIDs {
		s.deleteVertexLocked(id)
	}
	for _, e := range edges {
		s.deleteEdgeLocked(e)
	}
	return nil
}

// SetPropertiesBatch implements graphstore.Store: sets (name, v) on every
// listed vertex and edge under one write-lock acquisition. Rejects a null
// value up front, before touching anything (spec §7).
func (s *Store) SetPropertiesBatch(vertexIDs []uuid.UUID, edges []model.Edge, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range vertexIDs {
		s.setVertexPropertyLocked(id, name, v)
	}
	for _, e := range edges {
		s.setEdgePropertyLocked(e, name, v)
	}
	return nil
}

// Sync implements graphstore.Store: serializes the whole datastore to a
// temporary file and atomically renames it over the target path (spec
// §4.4, §9). A no-op if the store has no backing path.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.path == "" {
		return nil
	}
	return s.save(s.path)
}

// Close implements graphstore.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

