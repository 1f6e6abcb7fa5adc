// Package kv implements the KV-backed storage backend (spec §4.5): the same
// seven logical tables as the in-memory backend, plus a metadata table for
// indexed-property bookkeeping, realized as eight versioned key-prefix
// "column families" inside one github.com/dgraph-io/badger/v4 database.
// Badger has no native column-family concept, so each CF here is a single
// leading byte plus the shared big-endian key encodings of
// pkg/graphstore/enckey — exactly the teacher's own label/outgoing/incoming
// index scheme in pkg/storage/badger.go, extended from three prefixes to
// eight.
package kv

import (
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/clock"
	"github.com/mimirgraph/pgraph/pkg/graphstore"
	"github.com/mimirgraph/pgraph/pkg/graphstore/enckey"
	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/pgerr"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// Column family prefixes. Single byte, versioned: a future incompatible
// layout change bumps these rather than reusing a byte with a different
// meaning.
const (
	cfVertex           = byte(0x01)
	cfEdgeForward      = byte(0x02)
	cfEdgeReverse      = byte(0x03)
	cfVertexProperty   = byte(0x04)
	cfEdgeProperty     = byte(0x05)
	cfVertexPropValues = byte(0x06)
	cfEdgePropValues   = byte(0x07)
	cfMeta             = byte(0x08)
)

// metaIndexedPrefix marks an indexed property name in the metadata CF:
// cfMeta ∥ metaIndexedPrefix ∥ name -> empty.
const metaIndexedPrefix = byte(0x01)

// Store is the graphstore.Store implementation backed by Badger.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
	logger *log.Logger
	clk    clock.Clock
}

var _ graphstore.Store = (*Store)(nil)

// Options configures a Store, in the style of the teacher's BadgerOptions.
type Options struct {
	// Path is the on-disk directory for data files. Required unless
	// InMemory is set.
	Path string

	// InMemory runs Badger in memory-only mode; data is not persisted.
	// Useful for tests.
	InMemory bool

	// SyncWrites forces fsync after every write. Slower, more durable.
	SyncWrites bool

	// Logger receives Badger's internal log lines. Defaults to a quiet
	// logger (spec §6: no mandatory logging configuration).
	Logger *log.Logger

	// Clock sources edge UpdatedAt timestamps. Defaults to clock.System{};
	// tests inject clock.Fixed or clock.Stepped for deterministic values.
	Clock clock.Clock
}

// badgerLogAdapter adapts a *log.Logger to badger.Logger, the same bridging
// shape the teacher's own Logger option takes (pkg/storage/badger.go).
type badgerLogAdapter struct{ l *log.Logger }

func (a badgerLogAdapter) Errorf(f string, args ...any)   { a.l.Printf("ERROR: "+f, args...) }
func (a badgerLogAdapter) Warningf(f string, args ...any) { a.l.Printf("WARN: "+f, args...) }
func (a badgerLogAdapter) Infof(f string, args ...any)    {}
func (a badgerLogAdapter) Debugf(f string, args ...any)   {}

// Open creates or opens a Badger-backed Store.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" && !opts.InMemory {
		return nil, pgerr.Validationf("kv: Path is required unless InMemory is set")
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true)
	}
	if opts.SyncWrites {
		bopts = bopts.WithSyncWrites(true)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "pgraph/kv: ", log.LstdFlags)
	}
	bopts = bopts.WithLogger(badgerLogAdapter{l: logger})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, pgerr.Iof(err, "kv: failed to open badger database")
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{db: db, logger: logger, clk: clk}, nil
}

// OpenInMemory opens a Store with no backing directory, for tests.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// Repair opens the database directory at path with Badger's default options
// and closes it again (spec §6, SPEC_FULL.md §9, grounded on
// original_source/'s `repair` free function in lib/src/rdb/datastore.rs).
// Whatever recovery Badger performs while opening is the only repair done;
// no separate repair routine is invoked. The database must not be open
// elsewhere while this runs.
func Repair(path string) error {
	bopts := badger.DefaultOptions(path)
	db, err := badger.Open(bopts)
	if err != nil {
		return pgerr.Iof(err, "kv: repair: failed to open database")
	}
	return db.Close()
}

func (s *Store) checkOpen() error {
	if s.closed {
		return pgerr.Iof(nil, "kv: store is closed")
	}
	return nil
}

func prefixed(cf byte, key []byte) []byte {
	out := make([]byte, 0, 1+len(key))
	out = append(out, cf)
	out = append(out, key...)
	return out
}

// CreateVertex implements graphstore.Store.
func (s *Store) CreateVertex(v model.Vertex) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	key := prefixed(cfVertex, enckey.VertexKey(v.ID))
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(key, []byte(v.T.String())); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, pgerr.Iof(err, "kv: create vertex")
	}
	return created, nil
}

// GetVertex implements graphstore.Store.
func (s *Store) GetVertex(id uuid.UUID) (model.Vertex, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := prefixed(cfVertex, enckey.VertexKey(id))
	var t string
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			t = string(val)
			return nil
		})
	})
	if err != nil {
		return model.Vertex{}, false, pgerr.Iof(err, "kv: get vertex")
	}
	if !found {
		return model.Vertex{}, false, nil
	}
	return model.Vertex{ID: id, T: ident.NewUnchecked(t)}, true, nil
}

// DeleteVertex implements graphstore.Store, cascading to incident edges and
// all properties they and the vertex own (spec §3 invariant 3).
func (s *Store) DeleteVertex(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return s.deleteVertexInTxn(txn, id)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: delete vertex")
	}
	return nil
}

func (s *Store) deleteVertexInTxn(txn *badger.Txn, id uuid.UUID) error {
	vKey := prefixed(cfVertex, enckey.VertexKey(id))
	if _, err := txn.Get(vKey); err == badger.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}

	if err := s.deleteIncidentEdgesLocked(txn, id); err != nil {
		return err
	}
	if err := s.deleteVertexPropertiesLocked(txn, id); err != nil {
		return err
	}
	return txn.Delete(vKey)
}

func (s *Store) deleteIncidentEdgesLocked(txn *badger.Txn, id uuid.UUID) error {
	var toDelete []model.Edge

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	fwdPrefix := prefixed(cfEdgeForward, id[:])
	it := txn.NewIterator(opts)
	for it.Seek(fwdPrefix); it.ValidForPrefix(fwdPrefix); it.Next() {
		out, t, in, ok := enckey.DecodeEdgeKey(stripPrefix(it.Item().KeyCopy(nil)))
		if !ok {
			continue
		}
		toDelete = append(toDelete, model.Edge{OutboundID: out, T: ident.NewUnchecked(t), InboundID: in})
	}
	it.Close()

	revPrefix := prefixed(cfEdgeReverse, id[:])
	it2 := txn.NewIterator(opts)
	for it2.Seek(revPrefix); it2.ValidForPrefix(revPrefix); it2.Next() {
		in, t, out, ok := enckey.DecodeEdgeKey(stripPrefix(it2.Item().KeyCopy(nil)))
		if !ok {
			continue
		}
		toDelete = append(toDelete, model.Edge{OutboundID: out, T: ident.NewUnchecked(t), InboundID: in})
	}
	it2.Close()

	for _, e := range toDelete {
		if err := s.deleteEdgeLocked(txn, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteVertexPropertiesLocked(txn *badger.Txn, id uuid.UUID) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	prefix := prefixed(cfVertexProperty, id[:])
	it := txn.NewIterator(opts)
	defer it.Close()
	var keys [][]byte
	var names []string
	var vals []value.Value
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		_, name, ok := decodeVertexPropertyKey(stripPrefix(key))
		if !ok {
			continue
		}
		var v value.Value
		err := it.Item().Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			v = parsed
			return nil
		})
		if err != nil {
			return err
		}
		keys = append(keys, key)
		names = append(names, name)
		vals = append(vals, v)
	}
	for i, key := range keys {
		if err := s.unindexVertexPropertyLocked(txn, id, names[i], vals[i]); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func stripPrefix(key []byte) []byte {
	if len(key) == 0 {
		return key
	}
	return key[1:]
}

func decodeVertexPropertyKey(key []byte) (uuid.UUID, string, bool) {
	var id uuid.UUID
	if len(key) < 20 {
		return id, "", false
	}
	copy(id[:], key[:16])
	n := int(uint32(key[16])<<24 | uint32(key[17])<<16 | uint32(key[18])<<8 | uint32(key[19]))
	if len(key) != 20+n {
		return id, "", false
	}
	return id, string(key[20:]), true
}

func decodeEdgePropertyKey(key []byte) (model.Edge, string, bool) {
	out, t, in, ok := enckey.DecodeEdgeKey(key)
	if !ok {
		return model.Edge{}, "", false
	}
	prefixLen := len(enckey.EdgeForwardKey(out, t, in))
	if len(key) < prefixLen+4 {
		return model.Edge{}, "", false
	}
	rest := key[prefixLen:]
	n := int(uint32(rest[0])<<24 | uint32(rest[1])<<16 | uint32(rest[2])<<8 | uint32(rest[3]))
	if len(rest) != 4+n {
		return model.Edge{}, "", false
	}
	return model.Edge{OutboundID: out, T: ident.NewUnchecked(t), InboundID: in}, string(rest[4:]), true
}

// RangeVertices implements graphstore.Store.
func (s *Store) RangeVertices(start uuid.UUID, hasStart bool, t *ident.Identifier, limit uint64) ([]model.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	var out []model.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{cfVertex}
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte{cfVertex}
		if hasStart {
			seek = prefixed(cfVertex, enckey.VertexKey(start))
		}
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix) && uint64(len(out)) < limit; it.Next() {
			key := it.Item().Key()
			if len(key) != 17 {
				continue
			}
			id, err := uuid.FromBytes(key[1:])
			if err != nil {
				continue
			}
			var typ string
			if err := it.Item().Value(func(v []byte) error { typ = string(v); return nil }); err != nil {
				return err
			}
			vt := ident.NewUnchecked(typ)
			if t != nil && !vt.Equal(*t) {
				continue
			}
			out = append(out, model.Vertex{ID: id, T: vt})
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: range vertices")
	}
	return out, nil
}

// SpecificVertices implements graphstore.Store.
func (s *Store) SpecificVertices(ids []uuid.UUID) ([]model.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(prefixed(cfVertex, enckey.VertexKey(id)))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			var typ string
			if err := item.Value(func(v []byte) error { typ = string(v); return nil }); err != nil {
				return err
			}
			out = append(out, model.Vertex{ID: id, T: ident.NewUnchecked(typ)})
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: specific vertices")
	}
	return out, nil
}

// CreateEdge implements graphstore.Store. The edge's UpdatedAt is stamped
// from the store's clock at creation time.
func (s *Store) CreateEdge(e model.Edge) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e.UpdatedAt = s.clk.Now()
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		created, err = s.createEdgeLocked(txn, e)
		return err
	})
	if err != nil {
		return false, pgerr.Iof(err, "kv: create edge")
	}
	return created, nil
}

// encodeTimestamp and decodeTimestamp round-trip an edge's UpdatedAt as the
// value stored alongside its forward/reverse keys (spec §4.5's edges table:
// "ordered (outbound_id,t,inbound_id) -> timestamp").
func encodeTimestamp(t time.Time) ([]byte, error) {
	b, err := t.MarshalBinary()
	if err != nil {
		return nil, pgerr.Serializationf(err, "kv: encode edge timestamp")
	}
	return b, nil
}

func decodeTimestamp(b []byte) (time.Time, error) {
	var t time.Time
	if len(b) == 0 {
		return t, nil
	}
	if err := t.UnmarshalBinary(b); err != nil {
		return t, pgerr.Serializationf(err, "kv: decode edge timestamp")
	}
	return t, nil
}

func (s *Store) createEdgeLocked(txn *badger.Txn, e model.Edge) (bool, error) {
	if _, err := txn.Get(prefixed(cfVertex, enckey.VertexKey(e.OutboundID))); err == badger.ErrKeyNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if _, err := txn.Get(prefixed(cfVertex, enckey.VertexKey(e.InboundID))); err == badger.ErrKeyNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}

	fwdKey := prefixed(cfEdgeForward, enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	if _, err := txn.Get(fwdKey); err == nil {
		return false, nil
	} else if err != badger.ErrKeyNotFound {
		return false, err
	}
	ts, err := encodeTimestamp(e.UpdatedAt)
	if err != nil {
		return false, err
	}
	revKey := prefixed(cfEdgeReverse, enckey.EdgeReverseKey(e.InboundID, e.T.String(), e.OutboundID))
	if err := txn.Set(fwdKey, ts); err != nil {
		return false, err
	}
	if err := txn.Set(revKey, ts); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteEdge implements graphstore.Store.
func (s *Store) DeleteEdge(e model.Edge) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.deleteEdgeLocked(txn, e)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: delete edge")
	}
	return nil
}

func (s *Store) deleteEdgeLocked(txn *badger.Txn, e model.Edge) error {
	fwdKey := prefixed(cfEdgeForward, enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	if _, err := txn.Get(fwdKey); err == badger.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}
	revKey := prefixed(cfEdgeReverse, enckey.EdgeReverseKey(e.InboundID, e.T.String(), e.OutboundID))

	if err := s.deleteEdgePropertiesLocked(txn, e); err != nil {
		return err
	}
	if err := txn.Delete(fwdKey); err != nil {
		return err
	}
	return txn.Delete(revKey)
}

func (s *Store) deleteEdgePropertiesLocked(txn *badger.Txn, e model.Edge) error {
	prefix := prefixed(cfEdgeProperty, enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	var names []string
	var vals []value.Value
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		_, name, ok := decodeEdgePropertyKey(stripPrefix(key))
		if !ok {
			continue
		}
		var v value.Value
		if err := it.Item().Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			v = parsed
			return nil
		}); err != nil {
			return err
		}
		keys = append(keys, key)
		names = append(names, name)
		vals = append(vals, v)
	}
	for i, key := range keys {
		if err := s.unindexEdgePropertyLocked(txn, e, names[i], vals[i]); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// AllEdges implements graphstore.Store.
func (s *Store) AllEdges(limit uint64) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	var out []model.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte{cfEdgeForward}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix) && uint64(len(out)) < limit; it.Next() {
			item := it.Item()
			out2, t, in, ok := enckey.DecodeEdgeKey(stripPrefix(item.KeyCopy(nil)))
			if !ok {
				continue
			}
			var ts time.Time
			if err := item.Value(func(b []byte) error {
				decoded, derr := decodeTimestamp(b)
				if derr != nil {
					return derr
				}
				ts = decoded
				return nil
			}); err != nil {
				return err
			}
			out = append(out, model.Edge{OutboundID: out2, T: ident.NewUnchecked(t), InboundID: in, UpdatedAt: ts})
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: all edges")
	}
	return out, nil
}

// SpecificEdges implements graphstore.Store.
func (s *Store) SpecificEdges(edges []model.Edge) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		for _, e := range edges {
			key := prefixed(cfEdgeForward, enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				continue
			} else if err != nil {
				return err
			}
			if err := item.Value(func(b []byte) error {
				decoded, derr := decodeTimestamp(b)
				if derr != nil {
					return derr
				}
				e.UpdatedAt = decoded
				return nil
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: specific edges")
	}
	return out, nil
}

// RangeEdgesByDirection implements graphstore.Store.
func (s *Store) RangeEdgesByDirection(vertexID uuid.UUID, dir model.Direction, t *ident.Identifier, limit uint64) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit == 0 {
		return nil, nil
	}
	cf := cfEdgeForward
	if dir == model.Inbound {
		cf = cfEdgeReverse
	}
	var out []model.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		prefix := prefixed(cf, vertexID[:])
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix) && uint64(len(out)) < limit; it.Next() {
			item := it.Item()
			a, typ, b, ok := enckey.DecodeEdgeKey(stripPrefix(item.KeyCopy(nil)))
			if !ok {
				continue
			}
			var e model.Edge
			if dir == model.Outbound {
				e = model.Edge{OutboundID: a, T: ident.NewUnchecked(typ), InboundID: b}
			} else {
				e = model.Edge{OutboundID: b, T: ident.NewUnchecked(typ), InboundID: a}
			}
			if t != nil && !e.T.Equal(*t) {
				continue
			}
			if err := item.Value(func(b []byte) error {
				decoded, derr := decodeTimestamp(b)
				if derr != nil {
					return derr
				}
				e.UpdatedAt = decoded
				return nil
			}); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: range edges by direction")
	}
	return out, nil
}

// GetVertexProperty implements graphstore.Store.
func (s *Store) GetVertexProperty(id uuid.UUID, name ident.Identifier) (value.Value, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := prefixed(cfVertexProperty, enckey.VertexPropertyKey(id, name.String()))
	var v value.Value
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			v = parsed
			return nil
		})
	})
	if err != nil {
		return value.Value{}, false, pgerr.Iof(err, "kv: get vertex property")
	}
	return v, found, nil
}

// SetVertexProperty implements graphstore.Store.
func (s *Store) SetVertexProperty(id uuid.UUID, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.setVertexPropertyInTxn(txn, id, name, v)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: set vertex property")
	}
	return nil
}

func (s *Store) setVertexPropertyInTxn(txn *badger.Txn, id uuid.UUID, name ident.Identifier, v value.Value) error {
	key := prefixed(cfVertexProperty, enckey.VertexPropertyKey(id, name.String()))
	data, err := v.MarshalJSON()
	if err != nil {
		return pgerr.Serializationf(err, "kv: encode vertex property")
	}
	item, getErr := txn.Get(key)
	if getErr != nil && getErr != badger.ErrKeyNotFound {
		return getErr
	}
	if getErr == nil {
		var old value.Value
		if verr := item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			old = parsed
			return nil
		}); verr != nil {
			return verr
		}
		if uerr := s.unindexVertexPropertyLocked(txn, id, name.String(), old); uerr != nil {
			return uerr
		}
	}
	if err := txn.Set(key, data); err != nil {
		return err
	}
	return s.indexVertexPropertyLocked(txn, id, name.String(), v)
}

// DeleteVertexProperty implements graphstore.Store.
func (s *Store) DeleteVertexProperty(id uuid.UUID, name ident.Identifier) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := prefixed(cfVertexProperty, enckey.VertexPropertyKey(id, name.String()))
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var old value.Value
		if verr := item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			old = parsed
			return nil
		}); verr != nil {
			return verr
		}
		if err := s.unindexVertexPropertyLocked(txn, id, name.String(), old); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: delete vertex property")
	}
	return nil
}

// GetEdgeProperty implements graphstore.Store.
func (s *Store) GetEdgeProperty(e model.Edge, name ident.Identifier) (value.Value, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := prefixed(cfEdgeProperty, enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))
	var v value.Value
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			v = parsed
			return nil
		})
	})
	if err != nil {
		return value.Value{}, false, pgerr.Iof(err, "kv: get edge property")
	}
	return v, found, nil
}

// SetEdgeProperty implements graphstore.Store.
func (s *Store) SetEdgeProperty(e model.Edge, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		return s.setEdgePropertyInTxn(txn, e, name, v)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: set edge property")
	}
	return nil
}

func (s *Store) setEdgePropertyInTxn(txn *badger.Txn, e model.Edge, name ident.Identifier, v value.Value) error {
	key := prefixed(cfEdgeProperty, enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))
	data, err := v.MarshalJSON()
	if err != nil {
		return pgerr.Serializationf(err, "kv: encode edge property")
	}
	item, getErr := txn.Get(key)
	if getErr != nil && getErr != badger.ErrKeyNotFound {
		return getErr
	}
	if getErr == nil {
		var old value.Value
		if verr := item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			old = parsed
			return nil
		}); verr != nil {
			return verr
		}
		if uerr := s.unindexEdgePropertyLocked(txn, e, name.String(), old); uerr != nil {
			return uerr
		}
	}
	if err := txn.Set(key, data); err != nil {
		return err
	}
	return s.indexEdgePropertyLocked(txn, e, name.String(), v)
}

// DeleteEdgeProperty implements graphstore.Store.
func (s *Store) DeleteEdgeProperty(e model.Edge, name ident.Identifier) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := prefixed(cfEdgeProperty, enckey.EdgePropertyKey(e.OutboundID, e.T.String(), e.InboundID, name.String()))
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var old value.Value
		if verr := item.Value(func(b []byte) error {
			parsed, perr := value.FromJSON(b)
			if perr != nil {
				return perr
			}
			old = parsed
			return nil
		}); verr != nil {
			return verr
		}
		if err := s.unindexEdgePropertyLocked(txn, e, name.String(), old); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return pgerr.Iof(err, "kv: delete edge property")
	}
	return nil
}

// VertexProperties implements graphstore.Store. Badger's lexicographic
// iteration over a fixed id prefix follows the key layout
// id ∥ name_len ∥ name, so shorter names come first and names of equal
// length are in byte order.
func (s *Store) VertexProperties(id uuid.UUID) ([]model.VertexProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.VertexProperty
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		prefix := prefixed(cfVertexProperty, id[:])
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			_, name, ok := decodeVertexPropertyKey(stripPrefix(it.Item().KeyCopy(nil)))
			if !ok {
				continue
			}
			var v value.Value
			if err := it.Item().Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				v = parsed
				return nil
			}); err != nil {
				return err
			}
			out = append(out, model.VertexProperty{ID: id, Name: ident.NewUnchecked(name), Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: vertex properties")
	}
	return out, nil
}

// EdgeProperties implements graphstore.Store.
func (s *Store) EdgeProperties(e model.Edge) ([]model.EdgeProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.EdgeProperty
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		prefix := prefixed(cfEdgeProperty, enckey.EdgeForwardKey(e.OutboundID, e.T.String(), e.InboundID))
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			_, name, ok := decodeEdgePropertyKey(stripPrefix(it.Item().KeyCopy(nil)))
			if !ok {
				continue
			}
			var v value.Value
			if err := it.Item().Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				v = parsed
				return nil
			}); err != nil {
				return err
			}
			out = append(out, model.EdgeProperty{Edge: e, Name: ident.NewUnchecked(name), Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, pgerr.Iof(err, "kv: edge properties")
	}
	return out, nil
}

func (s *Store) indexVertexPropertyLocked(txn *badger.Txn, id uuid.UUID, name string, v value.Value) error {
	indexed, err := isIndexedTxn(txn, name)
	if err != nil || !indexed {
		return err
	}
	canon := value.CanonicalBytes(v)
	key := prefixed(cfVertexPropValues, enckey.VertexPropertyValueKey(enckey.NameHash(name), enckey.ValueHash(canon), id))
	return txn.Set(key, []byte{})
}

func (s *Store) unindexVertexPropertyLocked(txn *badger.Txn, id uuid.UUID, name string, v value.Value) error {
	indexed, err := isIndexedTxn(txn, name)
	if err != nil || !indexed {
		return err
	}
	canon := value.CanonicalBytes(v)
	key := prefixed(cfVertexPropValues, enckey.VertexPropertyValueKey(enckey.NameHash(name), enckey.ValueHash(canon), id))
	if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}
	return txn.Delete(key)
}

func (s *Store) indexEdgePropertyLocked(txn *badger.Txn, e model.Edge, name string, v value.Value) error {
	indexed, err := isIndexedTxn(txn, name)
	if err != nil || !indexed {
		return err
	}
	canon := value.CanonicalBytes(v)
	key := prefixed(cfEdgePropValues, enckey.EdgePropertyValueKey(enckey.NameHash(name), enckey.ValueHash(canon), e.OutboundID, e.T.String(), e.InboundID))
	return txn.Set(key, []byte{})
}

func (s *Store) unindexEdgePropertyLocked(txn *badger.Txn, e model.Edge, name string, v value.Value) error {
	indexed, err := isIndexedTxn(txn, name)
	if err != nil || !indexed {
		return err
	}
	canon := value.CanonicalBytes(v)
	key := prefixed(cfEdgePropValues, enckey.EdgePropertyValueKey(enckey.NameHash(name), enckey.ValueHash(canon), e.OutboundID, e.T.String(), e.InboundID))
	if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
		return nil
	} else if err != nil {
		return err
	}
	return txn.Delete(key)
}

func metaIndexedKey(name string) []byte {
	return prefixed(cfMeta, append([]byte{metaIndexedPrefix}, name...))
}

func isIndexedTxn(txn *badger.Txn, name string) (bool, error) {
	_, err := txn.Get(metaIndexedKey(name))
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IndexProperty implements graphstore.Store. Back-fill scans every vertex
// and edge property row once, which is safe under a single transaction
// since the metadata flag and the back-filled rows land atomically (spec
// §4.6) — the same atomicity the teacher's SchemaManager gets from
// constraints being validated and persisted in one call.
func (s *Store) IndexProperty(name ident.Identifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := name.String()

	err := s.db.Update(func(txn *badger.Txn) error {
		if already, err := isIndexedTxn(txn, n); err != nil {
			return err
		} else if already {
			return nil
		}
		if err := txn.Set(metaIndexedKey(n), []byte{}); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte{cfVertexProperty}
		it := txn.NewIterator(opts)
		type vpRow struct {
			id uuid.UUID
			v  value.Value
		}
		var vpRows []vpRow
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			id, name2, ok := decodeVertexPropertyKey(stripPrefix(it.Item().KeyCopy(nil)))
			if !ok || name2 != n {
				continue
			}
			var v value.Value
			if err := it.Item().Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				v = parsed
				return nil
			}); err != nil {
				it.Close()
				return err
			}
			vpRows = append(vpRows, vpRow{id: id, v: v})
		}
		it.Close()
		for _, row := range vpRows {
			if err := s.indexVertexPropertyLocked(txn, row.id, n, row.v); err != nil {
				return err
			}
		}

		opts2 := badger.DefaultIteratorOptions
		opts2.PrefetchValues = true
		opts2.Prefix = []byte{cfEdgeProperty}
		it2 := txn.NewIterator(opts2)
		type epRow struct {
			e model.Edge
			v value.Value
		}
		var epRows []epRow
		for it2.Seek(opts2.Prefix); it2.ValidForPrefix(opts2.Prefix); it2.Next() {
			e, name2, ok := decodeEdgePropertyKey(stripPrefix(it2.Item().KeyCopy(nil)))
			if !ok || name2 != n {
				continue
			}
			var v value.Value
			if err := it2.Item().Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				v = parsed
				return nil
			}); err != nil {
				it2.Close()
				return err
			}
			epRows = append(epRows, epRow{e: e, v: v})
		}
		it2.Close()
		for _, row := range epRows {
			if err := s.indexEdgePropertyLocked(txn, row.e, n, row.v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pgerr.Iof(err, "kv: index property")
	}
	return nil
}

// IsIndexed implements graphstore.Store.
func (s *Store) IsIndexed(name ident.Identifier) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var indexed bool
	_ = s.db.View(func(txn *badger.Txn) error {
		var err error
		indexed, err = isIndexedTxn(txn, name.String())
		return err
	})
	return indexed
}

// VerticesWithPropertyValue implements graphstore.Store.
func (s *Store) VerticesWithPropertyValue(name ident.Identifier, v value.Value) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	var out []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		indexed, err := isIndexedTxn(txn, n)
		if err != nil {
			return err
		}
		if !indexed {
			return pgerr.NotIndexedf("property %q is not indexed", n)
		}
		canon := value.CanonicalBytes(v)
		prefix := prefixed(cfVertexPropValues, enckey.PropertyValueKeyPrefix(enckey.NameHash(n), enckey.ValueHash(canon)))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := stripPrefix(it.Item().KeyCopy(nil))
			if len(key) < 32 {
				continue
			}
			id, err := uuid.FromBytes(key[16:32])
			if err != nil {
				continue
			}
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerticesWithPropertyPresence implements graphstore.Store. A name-only
// prefix scan across all value hashes gives every owner of any value for
// that name, since each (vertex, name) pair holds exactly one value.
func (s *Store) VerticesWithPropertyPresence(name ident.Identifier) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	var out []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		indexed, err := isIndexedTxn(txn, n)
		if err != nil {
			return err
		}
		if !indexed {
			return pgerr.NotIndexedf("property %q is not indexed", n)
		}
		prefix := prefixed(cfVertexPropValues, enckey.NamePrefix(enckey.NameHash(n)))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := stripPrefix(it.Item().KeyCopy(nil))
			if len(key) < 32 {
				continue
			}
			id, err := uuid.FromBytes(key[16:32])
			if err != nil {
				continue
			}
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EdgesWithPropertyValue implements graphstore.Store.
func (s *Store) EdgesWithPropertyValue(name ident.Identifier, v value.Value) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	var out []model.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		indexed, err := isIndexedTxn(txn, n)
		if err != nil {
			return err
		}
		if !indexed {
			return pgerr.NotIndexedf("property %q is not indexed", n)
		}
		canon := value.CanonicalBytes(v)
		prefix := prefixed(cfEdgePropValues, enckey.PropertyValueKeyPrefix(enckey.NameHash(n), enckey.ValueHash(canon)))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := stripPrefix(it.Item().KeyCopy(nil))
			if len(key) < 16 {
				continue
			}
			out2, t, in, ok := enckey.DecodeEdgeKey(key[16:])
			if !ok {
				continue
			}
			out = append(out, model.Edge{OutboundID: out2, T: ident.NewUnchecked(t), InboundID: in})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EdgesWithPropertyPresence implements graphstore.Store.
func (s *Store) EdgesWithPropertyPresence(name ident.Identifier) ([]model.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := name.String()
	var out []model.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		indexed, err := isIndexedTxn(txn, n)
		if err != nil {
			return err
		}
		if !indexed {
			return pgerr.NotIndexedf("property %q is not indexed", n)
		}
		prefix := prefixed(cfEdgePropValues, enckey.NamePrefix(enckey.NameHash(n)))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := stripPrefix(it.Item().KeyCopy(nil))
			if len(key) < 16 {
				continue
			}
			out2, t, in, ok := enckey.DecodeEdgeKey(key[16:])
			if !ok {
				continue
			}
			out = append(out, model.Edge{OutboundID: out2, T: ident.NewUnchecked(t), InboundID: in})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkInsert implements graphstore.Store, applying every item inside one
// Badger transaction.
func (s *Store) BulkInsert(items []model.BulkItem) (applied, skipped int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txnErr := s.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			ok, ierr := s.applyBulkItemLocked(txn, item)
			if ierr != nil {
				return ierr
			}
			if ok {
				applied++
			} else {
				skipped++
			}
		}
		return nil
	})
	if txnErr != nil {
		return 0, 0, pgerr.Iof(txnErr, "kv: bulk insert")
	}
	return applied, skipped, nil
}

func (s *Store) applyBulkItemLocked(txn *badger.Txn, item model.BulkItem) (bool, error) {
	switch item.Kind {
	case model.BulkVertex:
		key := prefixed(cfVertex, enckey.VertexKey(item.Vertex.ID))
		if _, err := txn.Get(key); err == nil {
			return false, nil
		} else if err != badger.ErrKeyNotFound {
			return false, err
		}
		return true, txn.Set(key, []byte(item.Vertex.T.String()))
	case model.BulkEdge:
		e := item.Edge
		e.UpdatedAt = s.clk.Now()
		return s.createEdgeLocked(txn, e)
	case model.BulkVertexProperty:
		vp := item.VertexProperty
		v := value.FromAny(vp.Value)
		if v.IsNull() {
			return false, nil
		}
		if _, err := txn.Get(prefixed(cfVertex, enckey.VertexKey(vp.ID))); err == badger.ErrKeyNotFound {
			return false, nil
		} else if err != nil {
			return false, err
		}
		key := prefixed(cfVertexProperty, enckey.VertexPropertyKey(vp.ID, vp.Name.String()))
		data, err := v.MarshalJSON()
		if err != nil {
			return false, err
		}
		if item2, err := txn.Get(key); err == nil {
			var old value.Value
			if verr := item2.Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				old = parsed
				return nil
			}); verr != nil {
				return false, verr
			}
			if uerr := s.unindexVertexPropertyLocked(txn, vp.ID, vp.Name.String(), old); uerr != nil {
				return false, uerr
			}
		} else if err != badger.ErrKeyNotFound {
			return false, err
		}
		if err := txn.Set(key, data); err != nil {
			return false, err
		}
		return true, s.indexVertexPropertyLocked(txn, vp.ID, vp.Name.String(), v)
	case model.BulkEdgeProperty:
		ep := item.EdgeProperty
		v := value.FromAny(ep.Value)
		if v.IsNull() {
			return false, nil
		}
		fwdKey := prefixed(cfEdgeForward, enckey.EdgeForwardKey(ep.Edge.OutboundID, ep.Edge.T.String(), ep.Edge.InboundID))
		if _, err := txn.Get(fwdKey); err == badger.ErrKeyNotFound {
			return false, nil
		} else if err != nil {
			return false, err
		}
		key := prefixed(cfEdgeProperty, enckey.EdgePropertyKey(ep.Edge.OutboundID, ep.Edge.T.String(), ep.Edge.InboundID, ep.Name.String()))
		data, err := v.MarshalJSON()
		if err != nil {
			return false, err
		}
		if item2, err := txn.Get(key); err == nil {
			var old value.Value
			if verr := item2.Value(func(b []byte) error {
				parsed, perr := value.FromJSON(b)
				if perr != nil {
					return perr
				}
				old = parsed
				return nil
			}); verr != nil {
				return false, verr
			}
			if uerr := s.unindexEdgePropertyLocked(txn, ep.Edge, ep.Name.String(), old); uerr != nil {
				return false, uerr
			}
		} else if err != badger.ErrKeyNotFound {
			return false, err
		}
		if err := txn.Set(key, data); err != nil {
			return false, err
		}
		return true, s.indexEdgePropertyLocked(txn, ep.Edge, ep.Name.String(), v)
	default:
		return false, nil
	}
}

// DeleteBatch implements graphstore.Store: removes every vertex (cascading
// to its incident edges and properties) and every edge under one Badger
// transaction, so the mutation is atomic with respect to storage visibility
// (spec §4.6's set_properties/delete-over-a-query-result semantics).
func (s *Store) DeleteBatch(vertexIDs []uuid.UUID, edges []model.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range vertexIDs {
			if err := s.deleteVertexInTxn(txn, id); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := s.deleteEdgeLocked(txn, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pgerr.Iof(err, "kv: delete batch")
	}
	return nil
}

// SetPropertiesBatch implements graphstore.Store: sets (name, v) on every
// listed vertex and edge under one Badger transaction. Rejects a null value
// up front, before touching anything (spec §7).
func (s *Store) SetPropertiesBatch(vertexIDs []uuid.UUID, edges []model.Edge, name ident.Identifier, v value.Value) error {
	if v.IsNull() {
		return pgerr.Validationf("null value is not allowed for property %q", name.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range vertexIDs {
			if err := s.setVertexPropertyInTxn(txn, id, name, v); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := s.setEdgePropertyInTxn(txn, e, name, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pgerr.Iof(err, "kv: set properties batch")
	}
	return nil
}

// Sync implements graphstore.Store: forces a fsync of all pending writes,
// the same call the teacher's BadgerEngine.Sync makes. It runs no
// compaction.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.db.Sync(); err != nil {
		return pgerr.Iof(err, "kv: sync")
	}
	return nil
}

// Close implements graphstore.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return pgerr.Iof(err, "kv: close")
	}
	return nil
}
