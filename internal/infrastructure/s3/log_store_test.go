package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

type fakeObjectAPI struct {
	getOut *s3.GetObjectOutput
	getErr error
	putErr error
	getIn  *s3.GetObjectInput
	putIn  *s3.PutObjectInput
	put    []byte
}

func (f *fakeObjectAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getIn = in
	return f.getOut, f.getErr
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putIn = in
	if in.Body != nil {
		body, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		f.put = body
	}
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{ETag: aws.String(`"v2"`)}, nil
}

func TestReadReturnsBodyAndVersion(t *testing.T) {
	api := &fakeObjectAPI{getOut: &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader([]byte("timestamp,company,email,role,coords\n"))),
		ETag: aws.String(`"v1"`),
	}}
	store := NewLogStore(api, "forms", "")

	contents, err := store.Read(context.Background())
	require.NoError(t, err)

	assert.True(t, contents.Exists)
	assert.Equal(t, `"v1"`, contents.Version)
	assert.Equal(t, "timestamp,company,email,role,coords\n", string(contents.Body))
	assert.Equal(t, "forms", aws.ToString(api.getIn.Bucket))
	assert.Equal(t, "submissions.csv", aws.ToString(api.getIn.Key))
}

func TestReadTreatsMissingObjectAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "typed no such key", err: &types.NoSuchKey{}},
		{name: "typed not found", err: &types.NotFound{}},
		{name: "generic code", err: &smithy.GenericAPIError{Code: "NoSuchKey"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewLogStore(&fakeObjectAPI{getErr: tt.err}, "forms", "submissions.csv")

			contents, err := store.Read(context.Background())
			require.NoError(t, err)
			assert.False(t, contents.Exists)
			assert.Nil(t, contents.Body)
		})
	}
}

func TestReadSurfacesOtherErrors(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "SlowDown"}
	store := NewLogStore(&fakeObjectAPI{getErr: cause}, "forms", "submissions.csv")

	_, err := store.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "s3://forms/submissions.csv")
}

func TestWritePutsWholeObject(t *testing.T) {
	api := &fakeObjectAPI{}
	store := NewLogStore(api, "forms", "submissions.csv")

	err := store.Write(context.Background(), []byte("a,b\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, "a,b\n", string(api.put))
	assert.Equal(t, "text/csv", aws.ToString(api.putIn.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(api.putIn.ContentLength))
	assert.Nil(t, api.putIn.IfMatch)
	assert.Nil(t, api.putIn.IfNoneMatch)
}

func TestWriteAppliesConditions(t *testing.T) {
	api := &fakeObjectAPI{}
	store := NewLogStore(api, "forms", "submissions.csv")

	require.NoError(t, store.Write(context.Background(), []byte("x"), &application.WriteCondition{IfMatch: `"v1"`}))
	assert.Equal(t, `"v1"`, aws.ToString(api.putIn.IfMatch))
	assert.Nil(t, api.putIn.IfNoneMatch)

	require.NoError(t, store.Write(context.Background(), []byte("x"), &application.WriteCondition{IfAbsent: true}))
	assert.Equal(t, "*", aws.ToString(api.putIn.IfNoneMatch))
	assert.Nil(t, api.putIn.IfMatch)
}

func TestWriteMapsPreconditionFailure(t *testing.T) {
	for _, code := range []string{"PreconditionFailed", "ConditionalRequestConflict"} {
		api := &fakeObjectAPI{putErr: &smithy.GenericAPIError{Code: code}}
		store := NewLogStore(api, "forms", "submissions.csv")

		err := store.Write(context.Background(), []byte("x"), &application.WriteCondition{IfMatch: `"v1"`})
		assert.ErrorIs(t, err, application.ErrWriteConflict, code)
	}
}

func TestWriteWrapsOtherErrors(t *testing.T) {
	cause := errors.New("connection reset")
	store := NewLogStore(&fakeObjectAPI{putErr: cause}, "forms", "submissions.csv")

	err := store.Write(context.Background(), []byte("x"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, application.ErrWriteConflict)
}
