package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"restochain-backend/firebase"
)

// mockStorage implements firebase.StorageClient for tests. Each Fn field
// overrides the default behavior when set.
type mockStorage struct {
	mu sync.Mutex

	UploadFn func(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
	MirrorFn func(ctx context.Context, imageURL, productID string) (string, error)
	DeleteFn func(ctx context.Context, objectPath string) error

	uploaded []string
	deleted  []string
}

var _ firebase.StorageClient = (*mockStorage)(nil)

func newMockStorage() *mockStorage {
	return &mockStorage{}
}

func (m *mockStorage) UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, file, filename, contentType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, filename)
	return firebase.PublicURL("test-bucket", fmt.Sprintf("products/%d_%s", len(m.uploaded), filename)), nil
}

func (m *mockStorage) MirrorProductImage(ctx context.Context, imageURL, productID string) (string, error) {
	if m.MirrorFn != nil {
		return m.MirrorFn(ctx, imageURL, productID)
	}
	return firebase.PublicURL("test-bucket", "products/"+productID+"_mirror.jpg"), nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, objectPath string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, objectPath)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, objectPath)
	return nil
}

func (m *mockStorage) deletedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
