package public

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sngm3741/makoto-club-services/intake/internal/interfaces/http/common"
	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

// Handler wires the submission endpoint to the application service.
type Handler struct {
	logger        logrus.FieldLogger
	submissions   application.SubmissionCommandService
	honeypotField string
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger        logrus.FieldLogger
	Submissions   application.SubmissionCommandService
	HoneypotField string
}

// NewHandler constructs the public submission handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	honeypot := cfg.HoneypotField
	if honeypot == "" {
		honeypot = DefaultHoneypotField
	}
	return &Handler{
		logger:        logger,
		submissions:   cfg.Submissions,
		honeypotField: honeypot,
	}
}

// Register mounts the submission routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.submitHandler())
	r.Post("/submissions", h.submitHandler())
}

// Handle runs one submission. The returned error is a storage failure that
// the caller must surface as a server error.
func (h *Handler) Handle(ctx context.Context, body string) (common.Response, error) {
	logger := h.requestLogger(ctx)

	cmd, err := decodeSubmission([]byte(body), h.honeypotField)
	if err != nil {
		logger.WithError(err).Debug("rejected submission payload")
		return common.Message(http.StatusBadRequest, common.MessageInvalidJSON), nil
	}

	result, err := h.submissions.Record(ctx, cmd)
	if err != nil {
		logger.WithError(err).Error("failed to record submission")
		return common.Response{}, err
	}

	logger.WithFields(logrus.Fields{
		"status":        result.Status,
		"submission_id": result.Submission.ID,
		"notification":  result.Notification.Status,
	}).Info("submission handled")

	return common.Message(http.StatusOK, common.MessageOK), nil
}

func (h *Handler) requestLogger(ctx context.Context) logrus.FieldLogger {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return h.logger.WithField("request_id", lc.AwsRequestID)
	}
	if id := middleware.GetReqID(ctx); id != "" {
		return h.logger.WithField("request_id", id)
	}
	return h.logger
}
