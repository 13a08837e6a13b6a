package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

type gcsAPI interface {
	listObjectNames(ctx context.Context, bucket, prefix string) ([]string, error)
	signedURL(bucket, key string, opts *storage.SignedURLOptions) (string, error)
	deleteObject(ctx context.Context, bucket, key string) error
}

// gcsClient adapts *storage.Client to gcsAPI.
type gcsClient struct {
	client *storage.Client
}

func (g *gcsClient) listObjectNames(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
}

func (g *gcsClient) signedURL(bucket, key string, opts *storage.SignedURLOptions) (string, error) {
	return g.client.Bucket(bucket).SignedURL(key, opts)
}

func (g *gcsClient) deleteObject(ctx context.Context, bucket, key string) error {
	return g.client.Bucket(bucket).Object(key).Delete(ctx)
}

// GCSStore uses Application Default Credentials. Signing needs a service
// account identity.
type GCSStore struct {
	api gcsAPI
	now func() time.Time
}

func ProvideGCSStore(ctx context.Context) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStore{api: &gcsClient{client: client}, now: time.Now}, nil
}

func (g *GCSStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectRef, error) {
	names, err := g.api.listObjectNames(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	objects := make([]ObjectRef, 0, len(names))
	for _, name := range names {
		objects = append(objects, ObjectRef{Bucket: bucket, Key: name})
	}
	return objects, nil
}

func (g *GCSStore) PresignGet(_ context.Context, obj ObjectRef, expiry time.Duration) (*PresignedURL, error) {
	expiresAt := g.now().Add(expiry)
	urlStr, err := g.api.signedURL(obj.Bucket, obj.Key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", obj.URI(), err)
	}
	return &PresignedURL{URL: urlStr, ExpiresAt: expiresAt}, nil
}

func (g *GCSStore) DeleteObject(ctx context.Context, obj ObjectRef) error {
	err := g.api.deleteObject(ctx, obj.Bucket, obj.Key)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}
