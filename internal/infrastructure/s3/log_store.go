package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
	"github.com/sngm3741/makoto-club-services/intake/internal/submission/domain"
)

// ObjectAPI is the subset of the S3 client used by LogStore.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LogStore keeps the submission log in a single S3 object.
type LogStore struct {
	client ObjectAPI
	bucket string
	key    string
}

func NewLogStore(client ObjectAPI, bucket, key string) *LogStore {
	if key == "" {
		key = domain.LogObjectKey
	}
	return &LogStore{client: client, bucket: bucket, key: key}
}

// Read fetches the log. A missing object yields Exists=false and no error.
func (st *LogStore) Read(ctx context.Context) (application.LogContents, error) {
	out, err := st.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(st.key),
	})
	if err != nil {
		if isNotFound(err) {
			return application.LogContents{}, nil
		}
		return application.LogContents{}, fmt.Errorf("get %s: %w", st.location(), err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return application.LogContents{}, fmt.Errorf("read %s: %w", st.location(), err)
	}

	return application.LogContents{
		Body:    body,
		Version: aws.ToString(out.ETag),
		Exists:  true,
	}, nil
}

// Write replaces the log object in one PutObject call.
func (st *LogStore) Write(ctx context.Context, body []byte, cond *application.WriteCondition) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(st.bucket),
		Key:           aws.String(st.key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(domain.LogContentType),
	}
	if cond != nil {
		switch {
		case cond.IfAbsent:
			input.IfNoneMatch = aws.String("*")
		case cond.IfMatch != "":
			input.IfMatch = aws.String(cond.IfMatch)
		}
	}

	if _, err := st.client.PutObject(ctx, input); err != nil {
		if isConflict(err) {
			return application.ErrWriteConflict
		}
		return fmt.Errorf("put %s: %w", st.location(), err)
	}
	return nil
}

func (st *LogStore) location() string {
	return "s3://" + st.bucket + "/" + st.key
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isConflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
