package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore talks to Cloud Firestore. Documents are written with their
// `firestore` struct tags and read back through their `json` tags, the same
// decoding the other stores use.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

func (s *FirestoreStore) doc(path string) (*firestore.DocumentRef, error) {
	if _, _, err := splitPath(path); err != nil {
		return nil, err
	}
	ref := s.client.Doc(path)
	if ref == nil {
		return nil, ErrInvalidPath
	}
	return ref, nil
}

func (s *FirestoreStore) collection(path string) (*firestore.CollectionRef, error) {
	if err := validCollection(path); err != nil {
		return nil, err
	}
	ref := s.client.Collection(path)
	if ref == nil {
		return nil, ErrInvalidPath
	}
	return ref, nil
}

func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	col, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	ref, _, err := col.Add(ctx, doc)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, doc any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, doc)
	return err
}

func (s *FirestoreStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, path string, dst any) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return notFound(err)
	}
	if err := decodeData(snap.Data(), dst); err != nil {
		return err
	}
	assignID(dst, snap.Ref.ID)
	return nil
}

func (s *FirestoreStore) Where(ctx context.Context, collection, field string, value any, dst any) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	return readAll(col.Where(field, "==", value).Documents(ctx), dst)
}

func (s *FirestoreStore) List(ctx context.Context, collection string, dst any) error {
	col, err := s.collection(collection)
	if err != nil {
		return err
	}
	return readAll(col.Documents(ctx), dst)
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	ref, err := s.doc(path)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx)
	return err
}

func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(ctx, &firestoreTx{store: s, tx: t})
	})
}

func readAll(it *firestore.DocumentIterator, dst any) error {
	defer it.Stop()
	var snaps []*firestore.DocumentSnapshot
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return err
		}
		snaps = append(snaps, snap)
	}
	ids := make([]string, len(snaps))
	for i, snap := range snaps {
		ids[i] = snap.Ref.ID
	}
	return fillSlice(dst, ids, func(i int, target any) error {
		return decodeData(snaps[i].Data(), target)
	})
}

// decodeData decodes a Firestore document into dst. Documents written by
// the web client carry ISO-8601 strings where this service writes
// timestamps; both arrive in time.Time fields.
func decodeData(data map[string]any, dst any) error {
	b, err := json.Marshal(jsonValue(data))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func jsonValue(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case *firestore.DocumentRef:
		if v == nil {
			return nil
		}
		return v.ID
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = jsonValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = jsonValue(e)
		}
		return out
	}
	return v
}

type firestoreTx struct {
	store *FirestoreStore
	tx    *firestore.Transaction
}

func (t *firestoreTx) Get(path string, dst any) error {
	ref, err := t.store.doc(path)
	if err != nil {
		return err
	}
	snap, err := t.tx.Get(ref)
	if err != nil {
		return notFound(err)
	}
	if err := decodeData(snap.Data(), dst); err != nil {
		return err
	}
	assignID(dst, ref.ID)
	return nil
}

func (t *firestoreTx) Set(path string, doc any) error {
	ref, err := t.store.doc(path)
	if err != nil {
		return err
	}
	return t.tx.Set(ref, doc)
}

func (t *firestoreTx) Merge(path string, fields map[string]any) error {
	ref, err := t.store.doc(path)
	if err != nil {
		return err
	}
	return t.tx.Set(ref, fields, firestore.MergeAll)
}

func (t *firestoreTx) Create(collection string, doc any) (string, error) {
	col, err := t.store.collection(collection)
	if err != nil {
		return "", err
	}
	ref := col.NewDoc()
	return ref.ID, t.tx.Create(ref, doc)
}
