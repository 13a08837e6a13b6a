package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaiNageswarS/threads-poster/logger"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// s3API is the subset of *s3.S3 used here.
type s3API interface {
	ListObjectsV2PagesWithContext(aws.Context, *s3.ListObjectsV2Input, func(*s3.ListObjectsV2Output, bool) bool, ...request.Option) error
	GetObjectRequest(*s3.GetObjectInput) (*request.Request, *s3.GetObjectOutput)
	DeleteObjectWithContext(aws.Context, *s3.DeleteObjectInput, ...request.Option) (*s3.DeleteObjectOutput, error)
}

// OCIS3Store talks to OCI Object Storage through its Amazon S3 compatibility
// API. Credentials are customer secret keys kept in the shared AWS
// credentials file, and profile names an AWS-format profile there. Its URLs
// are signed locally and cannot be revoked.
type OCIS3Store struct {
	client s3API
	now    func() time.Time
}

// ociS3Endpoint is the S3 compatibility endpoint of a tenancy namespace.
func ociS3Endpoint(namespace, region string) string {
	return fmt.Sprintf("https://%s.compat.objectstorage.%s.oraclecloud.com", namespace, region)
}

var newSession = func(profile string) (*session.Session, error) {
	return session.NewSessionWithOptions(session.Options{
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	})
}

// ProvideOCIS3Store builds the store from a shared-config profile. An empty
// region falls back to the region configured for that profile.
func ProvideOCIS3Store(namespace, region, profile string) (*OCIS3Store, error) {
	if namespace == "" {
		return nil, errors.New("oci namespace is not set")
	}

	sess, err := newSession(profile)
	if err != nil {
		return nil, fmt.Errorf("creating oci s3 session: %w", err)
	}

	if region == "" {
		region = aws.StringValue(sess.Config.Region)
	}
	if region == "" {
		return nil, errors.New("oci region is not set and profile has none")
	}

	client := s3.New(sess, &aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(ociS3Endpoint(namespace, region)),
		S3ForcePathStyle: aws.Bool(true),
	})

	logger.Info("Using OCI object storage (S3 compatibility)", zap.String("region", region), zap.String("profile", profile))
	return &OCIS3Store{client: client, now: time.Now}, nil
}

func (o *OCIS3Store) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectRef, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []ObjectRef
	err := o.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, item := range page.Contents {
			objects = append(objects, ObjectRef{Bucket: bucket, Key: aws.StringValue(item.Key)})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// PresignGet signs locally; no request is sent.
func (o *OCIS3Store) PresignGet(_ context.Context, obj ObjectRef, expiry time.Duration) (*PresignedURL, error) {
	req, _ := o.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})

	issued := o.now()
	urlStr, err := req.Presign(expiry)
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", obj.URI(), err)
	}
	return &PresignedURL{URL: urlStr, ExpiresAt: issued.Add(expiry)}, nil
}

func (o *OCIS3Store) DeleteObject(ctx context.Context, obj ObjectRef) error {
	_, err := o.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})

	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
		return ErrObjectNotFound
	}
	return err
}
