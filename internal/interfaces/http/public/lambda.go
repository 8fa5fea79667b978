package public

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sngm3741/makoto-club-services/intake/internal/interfaces/http/common"
)

// HandleAPIGateway adapts Handle to API Gateway proxy events. Storage
// failures are returned as invocation errors.
func (h *Handler) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return toProxyResponse(common.Preflight()), nil
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			h.requestLogger(ctx).WithError(err).Debug("failed to decode base64 body")
			return toProxyResponse(common.Message(http.StatusBadRequest, common.MessageInvalidJSON)), nil
		}
		body = string(decoded)
	}

	resp, err := h.Handle(ctx, body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return toProxyResponse(resp), nil
}

func toProxyResponse(resp common.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
