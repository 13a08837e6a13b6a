package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// blobClient is the subset of *azblob.Client used here.
type blobClient interface {
	NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
	DeleteBlob(ctx context.Context, containerName, blobName string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)
}

// AzureStore maps buckets to blob containers. SAS URLs are signed with the
// account shared key.
type AzureStore struct {
	client  blobClient
	sasURL  func(containerName, blobName string, expiry time.Time) (string, error)
	now     func() time.Time
	account string
}

// factory variable – defaults to the real SDK constructor
var newSharedKeyBlobClient = func(accountURL, account, key string) (*azblob.Client, error) {
	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, err
	}
	return azblob.NewClientWithSharedKeyCredential(accountURL, cred, nil)
}

func ProvideAzureStore(account, accessKey string) (*AzureStore, error) {
	if account == "" || accessKey == "" {
		return nil, errors.New("azure storage account and access key must be set")
	}

	accountURL := fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	client, err := newSharedKeyBlobClient(accountURL, account, accessKey)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &AzureStore{
		client: client,
		sasURL: func(containerName, blobName string, expiry time.Time) (string, error) {
			blob := client.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName)
			return blob.GetSASURL(sas.BlobPermissions{Read: true}, expiry, nil)
		},
		now:     time.Now,
		account: account,
	}, nil
}

func (a *AzureStore) ListObjects(ctx context.Context, containerName, prefix string) ([]ObjectRef, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var objects []ObjectRef
	pager := a.client.NewListBlobsFlatPager(containerName, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			objects = append(objects, ObjectRef{Bucket: containerName, Key: *item.Name})
		}
	}
	return objects, nil
}

func (a *AzureStore) PresignGet(_ context.Context, obj ObjectRef, expiry time.Duration) (*PresignedURL, error) {
	expiresAt := a.now().Add(expiry)
	urlStr, err := a.sasURL(obj.Bucket, obj.Key, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", obj.URI(), err)
	}
	return &PresignedURL{URL: urlStr, ExpiresAt: expiresAt}, nil
}

func (a *AzureStore) DeleteObject(ctx context.Context, obj ObjectRef) error {
	_, err := a.client.DeleteBlob(ctx, obj.Bucket, obj.Key, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrObjectNotFound
	}
	return err
}
