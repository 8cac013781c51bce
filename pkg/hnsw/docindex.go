package hnsw

import "github.com/bits-and-blooms/bitset"

// DocId is the compact internal id for an external record, recycled
// after deletion — distinct from ElementId, which is never recycled.
type DocId uint64

// docSet is the compact sparse representation of the set of DocIds
// sharing one deduplicated vector: a single id is stored inline with
// no allocation, and a second id promotes it to a bitset so membership
// and union/difference stay cheap as the set grows.
type docSet struct {
	single  DocId
	multi   *bitset.BitSet
	isMulti bool
}

func newDocSet(id DocId) *docSet {
	return &docSet{single: id}
}

func (s *docSet) add(id DocId) {
	if !s.isMulti {
		if s.single == id {
			return
		}
		bs := bitset.New(uint(id) + 1)
		bs.Set(uint(s.single))
		bs.Set(uint(id))
		s.multi = bs
		s.isMulti = true
		return
	}
	s.multi.Set(uint(id))
}

// remove drops id from the set and reports whether the set is now empty.
func (s *docSet) remove(id DocId) bool {
	if !s.isMulti {
		return s.single == id
	}
	s.multi.Clear(uint(id))
	return s.multi.None()
}

func (s *docSet) len() int {
	if !s.isMulti {
		return 1
	}
	return int(s.multi.Count())
}

func (s *docSet) each(fn func(DocId)) {
	if !s.isMulti {
		fn(s.single)
		return
	}
	for i, ok := s.multi.NextSet(0); ok; i, ok = s.multi.NextSet(i + 1) {
		fn(DocId(i))
	}
}

// vecEntry is the single shared element backing one or more DocIds that
// all resolved to byte-identical vector contents.
type vecEntry struct {
	elementId ElementId
	docs      *docSet
}

// DocIndex is component G: the indirection layer between external
// record ids and the engine's ElementIds, with vector deduplication
// and DocId recycling. R is the caller's record-identifier type.
type DocIndex[R comparable] struct {
	recordToDoc map[R]DocId
	docToRecord map[DocId]R
	free        *bitset.BitSet // bit i set => DocId(i) is free
	nextDocId   DocId

	vecDocs      map[string]*vecEntry
	elementToKey map[ElementId]string
}

// NewDocIndex returns an empty document index.
func NewDocIndex[R comparable]() *DocIndex[R] {
	return &DocIndex[R]{
		recordToDoc:  make(map[R]DocId),
		docToRecord:  make(map[DocId]R),
		free:         bitset.New(0),
		vecDocs:      make(map[string]*vecEntry),
		elementToKey: make(map[ElementId]string),
	}
}

// Resolve looks up record's DocId, allocating one (from the freelist if
// possible, else by appending) if the record has not been seen before.
func (idx *DocIndex[R]) Resolve(record R) DocId {
	if id, ok := idx.recordToDoc[record]; ok {
		return id
	}
	id := idx.allocateDocId()
	idx.recordToDoc[record] = id
	idx.docToRecord[id] = record
	return id
}

func (idx *DocIndex[R]) allocateDocId() DocId {
	if i, ok := idx.free.NextSet(0); ok {
		idx.free.Clear(i)
		return DocId(i)
	}
	id := idx.nextDocId
	idx.nextDocId++
	return id
}

// Get resolves a DocId back to its record.
func (idx *DocIndex[R]) Get(docId DocId) (R, bool) {
	r, ok := idx.docToRecord[docId]
	return r, ok
}

// ReverseRemove erases record's slot and returns its former DocId,
// recycling the id onto the freelist.
func (idx *DocIndex[R]) ReverseRemove(record R) (DocId, bool) {
	id, ok := idx.recordToDoc[record]
	if !ok {
		return 0, false
	}
	delete(idx.recordToDoc, record)
	delete(idx.docToRecord, id)
	idx.freeDocId(id)
	return id, true
}

func (idx *DocIndex[R]) freeDocId(id DocId) {
	idx.free.Set(uint(id)) // BitSet.Set grows the underlying set as needed
}

// InsertVector attaches docId to vector, deduplicating against any
// identical vector already indexed. engineInsert is called only the
// first time a given vector is seen.
func (idx *DocIndex[R]) InsertVector(vector Vector, docId DocId, engineInsert func(Vector) ElementId) {
	key := vector.Key()
	if entry, ok := idx.vecDocs[key]; ok {
		entry.docs.add(docId)
		return
	}
	elementId := engineInsert(vector)
	idx.vecDocs[key] = &vecEntry{elementId: elementId, docs: newDocSet(docId)}
	idx.elementToKey[elementId] = key
}

// RemoveVector detaches docId from vector; if it was the last DocId
// referencing the vector, the entry is erased and engineRemove is
// called to drop the underlying element too.
func (idx *DocIndex[R]) RemoveVector(vector Vector, docId DocId, engineRemove func(ElementId)) {
	key := vector.Key()
	entry, ok := idx.vecDocs[key]
	if !ok {
		return
	}
	if entry.docs.remove(docId) {
		delete(idx.vecDocs, key)
		delete(idx.elementToKey, entry.elementId)
		engineRemove(entry.elementId)
	}
}

// DocsForElement folds an ElementId returned from a search back to the
// set of DocIds sharing that vector, or ok=false if the element is
// unknown (e.g. a stale id after a concurrent-with-read mutation the
// caller's coordinator should have prevented).
func (idx *DocIndex[R]) DocsForElement(elementId ElementId) (*docSet, bool) {
	key, ok := idx.elementToKey[elementId]
	if !ok {
		return nil, false
	}
	entry, ok := idx.vecDocs[key]
	if !ok {
		return nil, false
	}
	return entry.docs, true
}
