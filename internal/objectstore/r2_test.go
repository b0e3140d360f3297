package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://pub.r2.dev/u/1.png", joinURL("https://pub.r2.dev/", "/u/1.png"))
	assert.Equal(t, "https://pub.r2.dev/u/1.png", joinURL("https://pub.r2.dev", "u/1.png"))
}

func TestNewR2Store_PublicURL(t *testing.T) {
	store, err := NewR2Store(context.Background(), R2Config{
		Endpoint:      "https://acct.r2.cloudflarestorage.com",
		AccessKeyID:   "key",
		SecretKey:     "secret",
		Bucket:        "photos",
		PublicBaseURL: "https://pub-abc.r2.dev",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pub-abc.r2.dev/user_a/1.png", store.PublicURL("user_a/1.png"))
}

type stubS3 struct {
	deleteErr error
	putErr    error
	deleted   []string
	puts      []*s3.PutObjectInput
}

func (s *stubS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.puts = append(s.puts, in)
	if s.putErr != nil {
		return nil, s.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.deleted = append(s.deleted, aws.ToString(in.Key))
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (s *stubS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func newStubStore(raw *stubS3) *R2Store {
	return &R2Store{raw: raw, config: R2Config{Bucket: "photos", PublicBaseURL: "https://pub-abc.r2.dev"}}
}

func TestR2Store_Upload(t *testing.T) {
	raw := &stubS3{}
	store := newStubStore(raw)

	url, err := store.Upload(context.Background(), "user_a/1.png", "image/png", []byte("png"))
	require.NoError(t, err)

	assert.Equal(t, "https://pub-abc.r2.dev/user_a/1.png", url)
	require.Len(t, raw.puts, 1)
	assert.Equal(t, "photos", aws.ToString(raw.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(raw.puts[0].ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(raw.puts[0].ContentLength))
}

func TestR2Store_UploadError(t *testing.T) {
	store := newStubStore(&stubS3{putErr: errors.New("denied")})

	_, err := store.Upload(context.Background(), "user_a/1.png", "image/png", []byte("png"))
	assert.ErrorContains(t, err, "failed to upload user_a/1.png")
}

func TestR2Store_DeleteMissingObject(t *testing.T) {
	raw := &stubS3{deleteErr: &smithy.GenericAPIError{Code: "NoSuchKey", Message: "gone"}}
	store := newStubStore(raw)

	assert.NoError(t, store.Delete(context.Background(), "user_a/1.png"))
	assert.Equal(t, []string{"user_a/1.png"}, raw.deleted)
}

func TestR2Store_DeleteError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}
	store := newStubStore(&stubS3{deleteErr: apiErr})

	err := store.Delete(context.Background(), "user_a/1.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "failed to delete user_a/1.png")
}
