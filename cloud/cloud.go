package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by DeleteObject when the store reports the
// object missing. S3-compatible stores never do.
var ErrObjectNotFound = errors.New("object not found")

// ObjectRef names one object in a bucket (or Azure container).
type ObjectRef struct {
	Bucket string
	Key    string
}

func (o ObjectRef) URI() string {
	return fmt.Sprintf("%s/%s", o.Bucket, o.Key)
}

// PresignedURL is an unauthenticated GET URL. It must not be used after
// ExpiresAt or after the object is deleted. ID is set when the store keeps
// server-side state for the URL.
type PresignedURL struct {
	URL       string
	ExpiresAt time.Time
	ID        string
}

type ObjectStore interface {
	// ListObjects pages through every object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectRef, error)
	PresignGet(ctx context.Context, obj ObjectRef, expiry time.Duration) (*PresignedURL, error)
	DeleteObject(ctx context.Context, obj ObjectRef) error
}

// URLRevoker is implemented by stores whose presigned URLs can be revoked
// before they expire.
type URLRevoker interface {
	RevokeURL(ctx context.Context, obj ObjectRef, url *PresignedURL) error
}

// ListImages returns the objects under prefix whose key ends with ext,
// compared case-insensitively. Provider order is kept. No match is nil, nil.
func ListImages(ctx context.Context, store ObjectStore, bucket, prefix, ext string) ([]ObjectRef, error) {
	objects, err := store.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
	}

	ext = strings.ToLower(ext)
	var images []ObjectRef
	for _, obj := range objects {
		if strings.HasSuffix(strings.ToLower(obj.Key), ext) {
			images = append(images, obj)
		}
	}
	return images, nil
}
