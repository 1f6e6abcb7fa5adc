package memory

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mimirgraph/pgraph/pkg/ident"
	"github.com/mimirgraph/pgraph/pkg/model"
	"github.com/mimirgraph/pgraph/pkg/value"
)

// snapshotVertex, snapshotEdge, and snapshotProperty are the wire shapes for
// the gob-encoded snapshot image (spec §4.4, §9). They are explicit sorted
// slices rather than the store's own maps: Go randomizes map iteration
// order by design, and a snapshot built straight from map ranges would
// write vertices/edges/properties in a different order every run, making
// two snapshots of identical data byte-for-byte different and any
// file-level diffing or deduplication useless.
type snapshotVertex struct {
	ID uuid.UUID
	T  string
}

type snapshotEdge struct {
	OutboundID uuid.UUID
	T          string
	InboundID  uuid.UUID
	UpdatedAt  time.Time
}

type snapshotVertexProperty struct {
	ID    uuid.UUID
	Name  string
	Value value.Value
}

type snapshotEdgeProperty struct {
	Edge  snapshotEdge
	Name  string
	Value value.Value
}

type snapshotImage struct {
	Vertices     []snapshotVertex
	Edges        []snapshotEdge
	VertexProps  []snapshotVertexProperty
	EdgeProps    []snapshotEdgeProperty
	IndexedNames []string
}

// save writes the current datastore to path as a gob-encoded snapshot,
// via a temp file plus atomic rename so a crash mid-write never leaves a
// half-written image in place of a good one (spec §9, grounded on the
// teacher's WAL/checkpoint write-then-rename discipline in
// pkg/storage/wal.go).
func (s *Store) save(path string) error {
	img := snapshotImage{
		IndexedNames: sortedStringSet(s.indexed),
	}

	for _, k := range s.vertexOrder.keys {
		id, err := uuid.FromBytes([]byte(k))
		if err != nil {
			continue
		}
		img.Vertices = append(img.Vertices, snapshotVertex{ID: id, T: s.vertices[id].String()})
	}

	for _, k := range s.edgesFwdIdx.keys {
		e := s.edgesFwd[k]
		img.Edges = append(img.Edges, snapshotEdge{OutboundID: e.OutboundID, T: e.T.String(), InboundID: e.InboundID, UpdatedAt: e.UpdatedAt})
	}

	for _, key := range sortedMapKeys(s.vprops) {
		id, name, ok := decodeVertexPropertyKey(key)
		if !ok {
			continue
		}
		img.VertexProps = append(img.VertexProps, snapshotVertexProperty{ID: id, Name: name, Value: s.vprops[key]})
	}

	for _, key := range sortedMapKeysEprop(s.eprops) {
		e, name, ok := decodeEdgePropertyKey(key)
		if !ok {
			continue
		}
		img.EdgeProps = append(img.EdgeProps, snapshotEdgeProperty{
			Edge: snapshotEdge{OutboundID: e.OutboundID, T: e.T.String(), InboundID: e.InboundID},
			Name: name, Value: s.eprops[key],
		})
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	enc := gob.NewEncoder(tmp)
	if err := enc.Encode(img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// load reads a previously-saved snapshot image from path and populates s.
func (s *Store) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var img snapshotImage
	if err := gob.NewDecoder(f).Decode(&img); err != nil {
		return err
	}

	for _, v := range img.Vertices {
		s.vertices[v.ID] = ident.NewUnchecked(v.T)
		s.vertexOrder.insert(v.ID[:])
	}
	for _, e := range img.Edges {
		edge := model.Edge{OutboundID: e.OutboundID, T: ident.NewUnchecked(e.T), InboundID: e.InboundID, UpdatedAt: e.UpdatedAt}
		_, _ = s.createEdgeLocked(edge)
	}
	for _, n := range img.IndexedNames {
		s.indexed[n] = struct{}{}
	}
	for _, vp := range img.VertexProps {
		name := ident.NewUnchecked(vp.Name)
		if err := s.SetVertexProperty(vp.ID, name, vp.Value); err != nil {
			return err
		}
	}
	for _, ep := range img.EdgeProps {
		edge := model.Edge{OutboundID: ep.Edge.OutboundID, T: ident.NewUnchecked(ep.Edge.T), InboundID: ep.Edge.InboundID}
		name := ident.NewUnchecked(ep.Name)
		if err := s.SetEdgeProperty(edge, name, ep.Value); err != nil {
			return err
		}
	}
	return nil
}

func sortedStringSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	insertionSortStrings(out)
	return out
}

func sortedMapKeys(m map[string]value.Value) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	insertionSortStrings(out)
	return out
}

func sortedMapKeysEprop(m map[string]value.Value) []string {
	return sortedMapKeys(m)
}

func insertionSortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
