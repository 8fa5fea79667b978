package application

import (
	"context"
	"errors"
	"time"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/domain"
)

// ErrWriteConflict reports that the log changed between read and write.
var ErrWriteConflict = errors.New("submission log was modified concurrently")

// LogContents is the state of the submission log as observed by a read.
// Exists is false when the object is absent; that is not an error.
type LogContents struct {
	Body    []byte
	Version string
	Exists  bool
}

// WriteCondition restricts a write to the log state seen by a prior read.
type WriteCondition struct {
	IfMatch  string
	IfAbsent bool
}

// LogStore abstracts the object holding the submission log.
// LogStore は提出ログ (CSV) を保持するオブジェクトストレージへのポート。
type LogStore interface {
	Read(ctx context.Context) (LogContents, error)
	// Write replaces the whole object. A non-nil cond must hold or
	// ErrWriteConflict is returned.
	Write(ctx context.Context, body []byte, cond *WriteCondition) error
}

// Notification is a plain-text email.
type Notification struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Notifier dispatches notification emails.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// FailedNotification captures a notification that could not be delivered.
type FailedNotification struct {
	Target     string
	Submission domain.Submission
	Recipient  string
	Error      string
	Attempts   int
	CreatedAt  time.Time
}

// FailedNotificationRepository keeps failed notifications for later replay.
type FailedNotificationRepository interface {
	Save(ctx context.Context, failure FailedNotification) error
}

// RecordSubmissionCommand captures the normalized form input.
type RecordSubmissionCommand struct {
	Company  string
	Email    string
	Role     string
	Coords   string
	Honeypot string
}

// RecordStatus tells whether a submission reached the log.
type RecordStatus string

const (
	RecordStatusRecorded  RecordStatus = "recorded"
	RecordStatusDiscarded RecordStatus = "discarded"
)

// NotificationStatus is the outcome of the best-effort email.
type NotificationStatus string

const (
	NotificationSkipped NotificationStatus = "skipped"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationOutcome reports what happened to the notification.
type NotificationOutcome struct {
	Status NotificationStatus
	Reason string
}

// Result describes a handled submission.
type Result struct {
	Status       RecordStatus
	Submission   domain.Submission
	Notification NotificationOutcome
}

// SubmissionCommandService handles the record use-case.
// SubmissionCommandService はフォーム提出をログへ追記し、通知を行うユースケース。
type SubmissionCommandService interface {
	Record(ctx context.Context, cmd RecordSubmissionCommand) (Result, error)
}
