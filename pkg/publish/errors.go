package publish

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
)

// Sentinel errors for publish operations.
var (
	ErrInvalidConfig = errors.New("publish: invalid configuration")
	ErrAccessDenied  = errors.New("publish: access denied")
	ErrNoSuchBucket  = errors.New("publish: bucket does not exist")
	ErrUploadFailed  = errors.New("publish: upload failed")
)

// wrapS3Error classifies an S3 failure for key. The result wraps both a
// sentinel and the original error.
func wrapS3Error(err error, bucket, key string) error {
	sentinel := ErrUploadFailed

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return herrors.New("H031", bucket).
				WithDetail(apiErr.ErrorMessage()).
				Wrap(errors.Join(ErrAccessDenied, err))
		case "NoSuchBucket":
			sentinel = ErrNoSuchBucket
		}
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		sentinel = ErrNoSuchBucket
	}

	e := herrors.New("H030", key).Wrap(errors.Join(sentinel, err))
	if sentinel == ErrNoSuchBucket {
		e = e.WithSuggestion("Create bucket " + bucket + " or fix publish.bucket in htmlfn.json")
	}
	return e
}
