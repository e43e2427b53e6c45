package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// maxTxAttempts matches the Firestore client's default retry budget.
const maxTxAttempts = 5

type memDoc struct {
	data    []byte
	seq     uint64
	version uint64
}

// MemoryStore keeps JSON-encoded documents in process memory. Transactions
// are serialized against each other and commit their writes atomically.
// A transaction whose reads were overwritten by a plain write before commit
// is retried, and merges are applied field by field at commit.
type MemoryStore struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	collections map[string]map[string]memDoc
	seq         uint64
	version     uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]memDoc)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.put(collection, id, data)
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, doc any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.put(collection, id, data)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var current []byte
	if d, ok := s.collections[collection][id]; ok {
		current = d.data
	}
	data, err := mergeJSON(current, fields)
	if err != nil {
		return err
	}
	s.put(collection, id, data)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, path string, dst any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.RLock()
	d, ok := s.collections[collection][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(d.data, dst); err != nil {
		return err
	}
	assignID(dst, id)
	return nil
}

func (s *MemoryStore) Where(ctx context.Context, collection, field string, value any, dst any) error {
	want, err := normalize(value)
	if err != nil {
		return err
	}
	return s.query(collection, dst, func(data []byte) bool {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return false
		}
		got, ok := m[field]
		return ok && reflect.DeepEqual(got, want)
	})
}

func (s *MemoryStore) List(ctx context.Context, collection string, dst any) error {
	return s.query(collection, dst, func([]byte) bool { return true })
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.collections[collection], id)
	s.version++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &memTx{store: s, reads: make(map[string]uint64)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		committed, err := s.commit(tx)
		if err != nil || committed {
			return err
		}
		if attempt == maxTxAttempts {
			return ErrTxConflict
		}
	}
}

// commit applies tx's writes unless a document it read has changed since.
func (s *MemoryStore) commit(tx *memTx) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, version := range tx.reads {
		if s.versionOf(path) != version {
			return false, nil
		}
	}
	for _, w := range tx.writes {
		collection, id, _ := splitPath(w.path)
		data := w.data
		if w.fields != nil {
			var err error
			data, err = mergeJSON(s.collections[collection][id].data, w.fields)
			if err != nil {
				return false, err
			}
		}
		s.put(collection, id, data)
	}
	return true, nil
}

// versionOf must be called with mu held. Absent documents have version 0.
func (s *MemoryStore) versionOf(path string) uint64 {
	collection, id, _ := splitPath(path)
	return s.collections[collection][id].version
}

// put must be called with mu held.
func (s *MemoryStore) put(collection, id string, data []byte) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memDoc)
		s.collections[collection] = docs
	}
	seq := docs[id].seq
	if seq == 0 {
		s.seq++
		seq = s.seq
	}
	s.version++
	docs[id] = memDoc{data: data, seq: seq, version: s.version}
}

func (s *MemoryStore) query(collection string, dst any, match func([]byte) bool) error {
	if err := validCollection(collection); err != nil {
		return err
	}
	type hit struct {
		id   string
		data []byte
		seq  uint64
	}
	var hits []hit
	s.mu.RLock()
	for id, d := range s.collections[collection] {
		if match(d.data) {
			hits = append(hits, hit{id: id, data: d.data, seq: d.seq})
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return fillSlice(dst, ids, func(i int, target any) error {
		return json.Unmarshal(hits[i].data, target)
	})
}

// memWrite is a staged write. A non-nil fields map is a merge.
type memWrite struct {
	path   string
	data   []byte
	fields map[string]any
}

type memTx struct {
	store  *MemoryStore
	reads  map[string]uint64
	writes []memWrite
}

// read returns the document as this transaction sees it: the stored body
// with the transaction's own staged writes applied.
func (t *memTx) read(path string) ([]byte, bool, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}
	t.store.mu.RLock()
	d, ok := t.store.collections[collection][id]
	t.store.mu.RUnlock()
	if _, seen := t.reads[path]; !seen {
		t.reads[path] = d.version
	}

	data := d.data
	for _, w := range t.writes {
		if w.path != path {
			continue
		}
		if w.fields == nil {
			data = w.data
		} else if data, err = mergeJSON(data, w.fields); err != nil {
			return nil, false, err
		}
		ok = true
	}
	return data, ok, nil
}

func (t *memTx) Get(path string, dst any) error {
	data, ok, err := t.read(path)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	_, id, _ := splitPath(path)
	assignID(dst, id)
	return nil
}

func (t *memTx) Set(path string, doc any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	t.writes = append(t.writes, memWrite{path: path, data: data})
	return nil
}

func (t *memTx) Merge(path string, fields map[string]any) error {
	if _, _, err := splitPath(path); err != nil {
		return err
	}
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[k] = nv
	}
	t.writes = append(t.writes, memWrite{path: path, fields: normalized})
	return nil
}

func (t *memTx) Create(collection string, doc any) (string, error) {
	if err := validCollection(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	return id, t.Set(Doc(collection, id), doc)
}

// normalize converts v to the shape it has after a JSON round trip, so that
// typed values compare equal to decoded document fields.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}

func mergeJSON(current []byte, fields map[string]any) ([]byte, error) {
	m := make(map[string]any)
	if len(current) > 0 {
		if err := json.Unmarshal(current, &m); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return nil, err
		}
		m[k] = nv
	}
	return json.Marshal(m)
}
