package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
)

var ErrStorageDisabled = errors.New("image storage is not configured")

// StorageClient stores product images. Handlers take the interface so tests
// can swap in a fake.
type StorageClient interface {
	UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) (string, error)
	MirrorProductImage(ctx context.Context, imageURL, productID string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

// FirebaseStorageClient writes public objects to a Firebase Storage bucket.
type FirebaseStorageClient struct {
	app        *firebase.App
	bucketName string
	httpClient *http.Client
}

func NewStorageClient(app *firebase.App, bucketName string) *FirebaseStorageClient {
	return &FirebaseStorageClient{
		app:        app,
		bucketName: bucketName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

const publicURLPrefix = "https://storage.googleapis.com/"

// PublicURL is the download URL of an object in bucket.
func PublicURL(bucket, objectPath string) string {
	return publicURLPrefix + bucket + "/" + objectPath
}

// ObjectPath splits a PublicURL back into its bucket and object path.
func ObjectPath(url string) (bucket, objectPath string, err error) {
	rest, ok := strings.CutPrefix(url, publicURLPrefix)
	if !ok {
		return "", "", fmt.Errorf("not a storage URL: %s", url)
	}
	bucket, objectPath, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || objectPath == "" {
		return "", "", fmt.Errorf("invalid storage URL: %s", url)
	}
	return bucket, objectPath, nil
}

func (f *FirebaseStorageClient) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	if f.app == nil || f.bucketName == "" {
		return nil, ErrStorageDisabled
	}
	client, err := f.app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage client: %v", err)
	}
	bucket, err := client.Bucket(f.bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %v", err)
	}
	return bucket, nil
}

func (f *FirebaseStorageClient) write(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %v", err)
	}

	// Public so the URL works without authentication.
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		log.Printf("WARNING: failed to set public ACL on %s: %v", objectPath, err)
	}

	return PublicURL(f.bucketName, objectPath), nil
}

func (f *FirebaseStorageClient) UploadProductImage(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	objectPath := fmt.Sprintf("products/%d_%s", time.Now().Unix(), sanitizeFilename(filename))
	return f.write(ctx, objectPath, file, contentType)
}

// MirrorProductImage copies an externally hosted image into the bucket.
func (f *FirebaseStorageClient) MirrorProductImage(ctx context.Context, imageURL, productID string) (string, error) {
	if err := validateExternalURL(imageURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %v", imageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("URL %s returned non-image content-type %q", imageURL, contentType)
	}

	objectPath := fmt.Sprintf("products/%s_%s.jpg", sanitizeFilename(productID), uuid.NewString()[:8])
	return f.write(ctx, objectPath, resp.Body, contentType)
}

func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	bucket, err := f.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", objectPath, err)
	}
	log.Printf("Deleted file %s from bucket %s", objectPath, f.bucketName)
	return nil
}
