package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SaiNageswarS/threads-poster/logger"
	"github.com/oracle/oci-go-sdk/common"
	"github.com/oracle/oci-go-sdk/objectstorage"
	"go.uber.org/zap"
)

// ociAPI is the subset of objectstorage.ObjectStorageClient used here.
type ociAPI interface {
	ListObjects(ctx context.Context, request objectstorage.ListObjectsRequest) (objectstorage.ListObjectsResponse, error)
	CreatePreauthenticatedRequest(ctx context.Context, request objectstorage.CreatePreauthenticatedRequestRequest) (objectstorage.CreatePreauthenticatedRequestResponse, error)
	DeletePreauthenticatedRequest(ctx context.Context, request objectstorage.DeletePreauthenticatedRequestRequest) (objectstorage.DeletePreauthenticatedRequestResponse, error)
	DeleteObject(ctx context.Context, request objectstorage.DeleteObjectRequest) (objectstorage.DeleteObjectResponse, error)
}

// OCIStore uses the native Object Storage API with credentials from the OCI
// config file (~/.oci/config). Presigned URLs are ObjectRead
// pre-authenticated requests and are revoked through RevokeURL.
type OCIStore struct {
	client    ociAPI
	namespace string
	region    string
	now       func() time.Time
}

// ociConfigPath is the OCI config file; empty means ~/.oci/config.
var ociConfigPath = ""

// regionOverride replaces the region of the wrapped provider.
type regionOverride struct {
	common.ConfigurationProvider
	region string
}

func (r regionOverride) Region() (string, error) { return r.region, nil }

// ProvideOCIStore loads the named profile (DEFAULT when empty) from the OCI
// config file. A non-empty region overrides the profile's region.
func ProvideOCIStore(namespace, region, profile string) (*OCIStore, error) {
	if namespace == "" {
		return nil, errors.New("oci namespace is not set")
	}

	if profile == "" {
		profile = "DEFAULT"
	}
	provider := common.CustomProfileConfigProvider(ociConfigPath, profile)
	if region != "" {
		provider = regionOverride{ConfigurationProvider: provider, region: region}
	}

	resolved, err := provider.Region()
	if err != nil {
		return nil, fmt.Errorf("loading oci configuration: %w", err)
	}
	if resolved == "" {
		return nil, errors.New("oci configuration is missing a region value")
	}

	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("creating oci object storage client: %w", err)
	}

	logger.Info("Using OCI object storage", zap.String("region", resolved), zap.String("profile", profile))
	return &OCIStore{client: client, namespace: namespace, region: resolved, now: time.Now}, nil
}

func (o *OCIStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectRef, error) {
	request := objectstorage.ListObjectsRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(bucket),
		Fields:        common.String("name"),
	}
	if prefix != "" {
		request.Prefix = common.String(prefix)
	}

	var objects []ObjectRef
	for {
		resp, err := o.client.ListObjects(ctx, request)
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Objects {
			if item.Name != nil {
				objects = append(objects, ObjectRef{Bucket: bucket, Key: *item.Name})
			}
		}

		if resp.NextStartWith == nil || *resp.NextStartWith == "" {
			return objects, nil
		}
		request.Start = resp.NextStartWith
	}
}

// PresignGet creates an ObjectRead pre-authenticated request for obj.
func (o *OCIStore) PresignGet(ctx context.Context, obj ObjectRef, expiry time.Duration) (*PresignedURL, error) {
	issued := o.now().UTC()
	expiresAt := issued.Add(expiry)

	resp, err := o.client.CreatePreauthenticatedRequest(ctx, objectstorage.CreatePreauthenticatedRequestRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(obj.Bucket),
		CreatePreauthenticatedRequestDetails: objectstorage.CreatePreauthenticatedRequestDetails{
			Name:        common.String("temp-par-" + issued.Format("20060102150405.000000")),
			AccessType:  objectstorage.CreatePreauthenticatedRequestDetailsAccessTypeObjectread,
			ObjectName:  common.String(obj.Key),
			TimeExpires: &common.SDKTime{Time: expiresAt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating pre-authenticated request for %s: %w", obj.URI(), err)
	}
	if resp.AccessUri == nil || *resp.AccessUri == "" {
		return nil, fmt.Errorf("creating pre-authenticated request for %s: no access uri returned", obj.URI())
	}

	presigned := &PresignedURL{
		URL:       fmt.Sprintf("https://objectstorage.%s.oraclecloud.com%s", o.region, *resp.AccessUri),
		ExpiresAt: expiresAt,
	}
	if resp.Id != nil {
		presigned.ID = *resp.Id
	}
	return presigned, nil
}

// RevokeURL deletes the pre-authenticated request behind url.
func (o *OCIStore) RevokeURL(ctx context.Context, obj ObjectRef, url *PresignedURL) error {
	if url == nil || url.ID == "" {
		return nil
	}

	_, err := o.client.DeletePreauthenticatedRequest(ctx, objectstorage.DeletePreauthenticatedRequestRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(obj.Bucket),
		ParId:         common.String(url.ID),
	})
	if err != nil {
		return fmt.Errorf("revoking pre-authenticated request for %s: %w", obj.URI(), err)
	}
	return nil
}

func (o *OCIStore) DeleteObject(ctx context.Context, obj ObjectRef) error {
	_, err := o.client.DeleteObject(ctx, objectstorage.DeleteObjectRequest{
		NamespaceName: common.String(o.namespace),
		BucketName:    common.String(obj.Bucket),
		ObjectName:    common.String(obj.Key),
	})
	if isOCINotFound(err) {
		return ErrObjectNotFound
	}
	return err
}

func isOCINotFound(err error) bool {
	var serviceErr common.ServiceError
	return errors.As(err, &serviceErr) && serviceErr.GetHTTPStatusCode() == http.StatusNotFound
}
