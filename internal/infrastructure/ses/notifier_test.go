package ses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

type fakeEmailAPI struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeEmailAPI) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSendBuildsSimpleTextEmail(t *testing.T) {
	api := &fakeEmailAPI{}
	n := NewNotifier(api)

	err := n.Send(context.Background(), application.Notification{
		From:    "ops@example.com",
		To:      "ops@example.com",
		Subject: "New submission: Acme",
		Body:    "Company: Acme\n",
	})
	require.NoError(t, err)

	require.NotNil(t, api.in)
	assert.Equal(t, "ops@example.com", aws.ToString(api.in.FromEmailAddress))
	assert.Equal(t, []string{"ops@example.com"}, api.in.Destination.ToAddresses)
	simple := api.in.Content.Simple
	require.NotNil(t, simple)
	assert.Equal(t, "New submission: Acme", aws.ToString(simple.Subject.Data))
	assert.Equal(t, "Company: Acme\n", aws.ToString(simple.Body.Text.Data))
	assert.Nil(t, simple.Body.Html)
}

func TestSendWrapsClientError(t *testing.T) {
	cause := errors.New("throttled")
	n := NewNotifier(&fakeEmailAPI{err: cause})

	err := n.Send(context.Background(), application.Notification{From: "a@b", To: "a@b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestSendRequiresRecipient(t *testing.T) {
	api := &fakeEmailAPI{}
	err := NewNotifier(api).Send(context.Background(), application.Notification{From: "a@b"})

	assert.Error(t, err)
	assert.Nil(t, api.in)
}
