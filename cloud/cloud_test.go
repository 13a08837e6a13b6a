package cloud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	objects []ObjectRef
	err     error
	prefix  string
}

func (s *stubStore) ListObjects(_ context.Context, _ string, prefix string) ([]ObjectRef, error) {
	s.prefix = prefix
	return s.objects, s.err
}

func (s *stubStore) PresignGet(context.Context, ObjectRef, time.Duration) (*PresignedURL, error) {
	return nil, errors.New("not used")
}

func (s *stubStore) DeleteObject(context.Context, ObjectRef) error {
	return errors.New("not used")
}

func TestListImages_FiltersByExtensionCaseInsensitive(t *testing.T) {
	store := &stubStore{objects: []ObjectRef{
		{Bucket: "b", Key: "quotes/a.png"},
		{Bucket: "b", Key: "quotes/b.PNG"},
		{Bucket: "b", Key: "quotes/notes.txt"},
		{Bucket: "b", Key: "quotes/png"},
		{Bucket: "b", Key: "quotes/c.jpg"},
	}}

	images, err := ListImages(context.Background(), store, "b", "quotes/", ".png")
	require.NoError(t, err)
	assert.Equal(t, "quotes/", store.prefix)
	assert.Equal(t, []ObjectRef{
		{Bucket: "b", Key: "quotes/a.png"},
		{Bucket: "b", Key: "quotes/b.PNG"},
	}, images)
}

func TestListImages_NoMatchesIsEmpty(t *testing.T) {
	store := &stubStore{objects: []ObjectRef{{Bucket: "b", Key: "readme.md"}}}

	images, err := ListImages(context.Background(), store, "b", "", ".png")
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestListImages_PropagatesError(t *testing.T) {
	boom := errors.New("forbidden")
	store := &stubStore{err: boom}

	images, err := ListImages(context.Background(), store, "b", "", ".png")
	assert.Nil(t, images)
	assert.ErrorIs(t, err, boom)
}

func TestObjectRefURI(t *testing.T) {
	assert.Equal(t, "bucket/dir/img.png", ObjectRef{Bucket: "bucket", Key: "dir/img.png"}.URI())
}
