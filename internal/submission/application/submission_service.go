package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/domain"
)

const (
	defaultNotificationTimeout = 3 * time.Second
	defaultWriteAttempts       = 3
)

// Options configures the submission service.
type Options struct {
	// NotificationAddress is both sender and recipient. Empty disables email.
	NotificationAddress string
	NotificationTimeout time.Duration
	// LenientReads treats any read failure as an empty log.
	LenientReads bool
	// ConditionalWrites conditions each write on the version that was read.
	ConditionalWrites bool
	WriteAttempts     int
	// FailedNotifications is optional.
	FailedNotifications FailedNotificationRepository
	Logger              logrus.FieldLogger
	Now                 func() time.Time
	NewID               func() string
}

type submissionCommandService struct {
	store               LogStore
	notifier            Notifier
	failedNotifications FailedNotificationRepository
	notificationAddress string
	notificationTimeout time.Duration
	lenientReads        bool
	conditionalWrites   bool
	writeAttempts       int
	logger              logrus.FieldLogger
	now                 func() time.Time
	newID               func() string
}

// NewSubmissionCommandService creates a SubmissionCommandService.
func NewSubmissionCommandService(store LogStore, notifier Notifier, opts Options) SubmissionCommandService {
	s := &submissionCommandService{
		store:               store,
		notifier:            notifier,
		failedNotifications: opts.FailedNotifications,
		notificationAddress: opts.NotificationAddress,
		notificationTimeout: opts.NotificationTimeout,
		lenientReads:        opts.LenientReads,
		conditionalWrites:   opts.ConditionalWrites,
		writeAttempts:       opts.WriteAttempts,
		logger:              opts.Logger,
		now:                 opts.Now,
		newID:               opts.NewID,
	}
	if s.notificationTimeout <= 0 {
		s.notificationTimeout = defaultNotificationTimeout
	}
	if s.writeAttempts < 1 {
		s.writeAttempts = defaultWriteAttempts
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

func (s *submissionCommandService) Record(ctx context.Context, cmd RecordSubmissionCommand) (Result, error) {
	if cmd.Honeypot != "" {
		s.logger.WithField("honeypot_length", len(cmd.Honeypot)).Info("automated submission discarded")
		return Result{Status: RecordStatusDiscarded}, nil
	}

	submission := domain.Submission{
		ID:         s.newID(),
		Company:    cmd.Company,
		Email:      cmd.Email,
		Role:       cmd.Role,
		Coords:     cmd.Coords,
		ReceivedAt: s.now().UTC(),
	}
	logger := s.logger.WithField("submission_id", submission.ID)

	if err := s.appendToLog(ctx, logger, submission); err != nil {
		return Result{}, err
	}
	logger.Info("submission recorded")

	return Result{
		Status:       RecordStatusRecorded,
		Submission:   submission,
		Notification: s.notify(ctx, logger, submission),
	}, nil
}

// appendToLog re-runs the whole read-modify-write on conflict, only when
// writes are conditional.
func (s *submissionCommandService) appendToLog(ctx context.Context, logger logrus.FieldLogger, submission domain.Submission) error {
	attempts := 1
	if s.conditionalWrites {
		attempts = s.writeAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.appendOnce(ctx, logger, submission)
		if !errors.Is(err, ErrWriteConflict) {
			return err
		}
		logger.WithField("attempt", attempt).Warn("submission log changed during append")
	}
	return err
}

func (s *submissionCommandService) appendOnce(ctx context.Context, logger logrus.FieldLogger, submission domain.Submission) error {
	contents, err := s.readLog(ctx, logger)
	if err != nil {
		return err
	}

	body, err := domain.AppendRecord(contents.Body, submission.Record())
	if err != nil {
		return err
	}

	var cond *WriteCondition
	if s.conditionalWrites {
		cond = conditionFor(contents)
	}
	if err := s.store.Write(ctx, body, cond); err != nil {
		return fmt.Errorf("write submission log: %w", err)
	}
	return nil
}

func (s *submissionCommandService) readLog(ctx context.Context, logger logrus.FieldLogger) (LogContents, error) {
	contents, err := s.store.Read(ctx)
	if err == nil {
		if !contents.Exists {
			contents.Body = nil
		}
		return contents, nil
	}
	if !s.lenientReads {
		return LogContents{}, fmt.Errorf("read submission log: %w", err)
	}
	logger.WithError(err).Warn("submission log read failed, starting from an empty log")
	return LogContents{}, nil
}

func conditionFor(contents LogContents) *WriteCondition {
	if contents.Exists {
		return &WriteCondition{IfMatch: contents.Version}
	}
	return &WriteCondition{IfAbsent: true}
}
