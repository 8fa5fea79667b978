package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/domain"
)

const notificationTarget = "submission_email"

// notify runs after the log write. Failures never reach the caller.
func (s *submissionCommandService) notify(ctx context.Context, logger logrus.FieldLogger, submission domain.Submission) NotificationOutcome {
	address := strings.TrimSpace(s.notificationAddress)
	if address == "" || s.notifier == nil {
		return NotificationOutcome{Status: NotificationSkipped}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notificationTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, buildNotification(address, submission)); err != nil {
		logger.WithError(err).Warn("submission notification failed")
		s.persistNotificationFailure(ctx, logger, address, submission, err)
		return NotificationOutcome{Status: NotificationFailed, Reason: err.Error()}
	}

	logger.Debug("submission notification sent")
	return NotificationOutcome{Status: NotificationSent}
}

func buildNotification(address string, submission domain.Submission) Notification {
	subject := "New submission"
	if company := strings.TrimSpace(submission.Company); company != "" {
		subject += ": " + company
	}

	var builder strings.Builder
	builder.WriteString("A new submission was recorded.\n\n")
	builder.WriteString(fmt.Sprintf("Company: %s\n", submission.Company))
	builder.WriteString(fmt.Sprintf("Email: %s\n", submission.Email))
	builder.WriteString(fmt.Sprintf("Role: %s\n", submission.Role))
	builder.WriteString(fmt.Sprintf("Coordinates: %s\n", submission.Coords))
	builder.WriteString(fmt.Sprintf("Timestamp: %s\n", submission.Timestamp()))
	if submission.ID != "" {
		builder.WriteString(fmt.Sprintf("\nSubmission ID: %s\n", submission.ID))
	}

	return Notification{
		From:    address,
		To:      address,
		Subject: subject,
		Body:    builder.String(),
	}
}

func (s *submissionCommandService) persistNotificationFailure(ctx context.Context, logger logrus.FieldLogger, recipient string, submission domain.Submission, sendErr error) {
	if s.failedNotifications == nil {
		return
	}
	failure := FailedNotification{
		Target:     notificationTarget,
		Submission: submission,
		Recipient:  recipient,
		Error:      sendErr.Error(),
		Attempts:   1,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.failedNotifications.Save(context.WithoutCancel(ctx), failure); err != nil {
		logger.WithError(err).Error("failed to store failed notification")
	}
}
