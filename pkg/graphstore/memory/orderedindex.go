package memory

import (
	"bytes"
	"sort"
)

// orderedIndex keeps a set of byte-string keys in ascending sorted order,
// standing in for the ordered-map ranging the source design describes over
// the seven tables (spec §4.4). Go's builtin map has no ordered iteration,
// so the vertex table and the forward edge table each pair a map
// (existence/payload, O(1)) with one of these (ordering, O(log n) search +
// O(n) insert/remove), while the other tables sort their map keys when
// iterated — the same
// "indexes for efficient lookups alongside the payload map" shape the
// teacher's MemoryEngine uses for its label/outgoing/incoming indexes,
// generalized here to keep the whole key space sorted rather than just a
// fixed label bucket.
type orderedIndex struct {
	keys []string
}

func (o *orderedIndex) insert(key []byte) {
	k := string(key)
	i := sort.SearchStrings(o.keys, k)
	if i < len(o.keys) && o.keys[i] == k {
		return
	}
	o.keys = append(o.keys, "")
	copy(o.keys[i+1:], o.keys[i:])
	o.keys[i] = k
}

func (o *orderedIndex) remove(key []byte) {
	k := string(key)
	i := sort.SearchStrings(o.keys, k)
	if i < len(o.keys) && o.keys[i] == k {
		o.keys = append(o.keys[:i], o.keys[i+1:]...)
	}
}

// from returns every key >= start, in ascending order, up to limit entries.
// A nil start returns from the very beginning.
func (o *orderedIndex) from(start []byte, limit uint64) []string {
	i := 0
	if start != nil {
		i = sort.SearchStrings(o.keys, string(start))
	}
	var out []string
	for ; i < len(o.keys) && uint64(len(out)) < limit; i++ {
		out = append(out, o.keys[i])
	}
	return out
}

// fromPrefix returns every key with the given byte prefix, in ascending
// order, up to limit entries.
func (o *orderedIndex) fromPrefix(prefix []byte, limit uint64) []string {
	i := sort.SearchStrings(o.keys, string(prefix))
	var out []string
	for ; i < len(o.keys) && uint64(len(out)) < limit; i++ {
		if !bytes.HasPrefix([]byte(o.keys[i]), prefix) {
			break
		}
		out = append(out, o.keys[i])
	}
	return out
}
