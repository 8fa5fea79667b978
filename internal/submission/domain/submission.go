package domain

import "time"

const (
	// LogObjectKey is the default key of the shared submission log.
	LogObjectKey = "submissions.csv"
	// LogContentType is stored with every write of the log object.
	LogContentType = "text/csv"
	// TimestampLayout renders receipt time in UTC with an explicit offset,
	// e.g. 2024-05-01T09:30:00.123456+00:00. The fraction is always six
	// digits, even at whole seconds. Older rows may omit it; existing rows
	// are copied as-is and never reparsed.
	TimestampLayout = "2006-01-02T15:04:05.000000-07:00"
)

// LogHeader is the first row of every non-empty submission log.
var LogHeader = []string{"timestamp", "company", "email", "role", "coords"}

// Submission represents one accepted form submission.
type Submission struct {
	ID         string
	Company    string
	Email      string
	Role       string
	Coords     string
	ReceivedAt time.Time
}

// Timestamp returns the receipt time formatted for the log.
func (s Submission) Timestamp() string {
	return s.ReceivedAt.UTC().Format(TimestampLayout)
}

// Record returns the fixed five-column row for the log, in LogHeader order.
func (s Submission) Record() []string {
	return []string{
		s.Timestamp(),
		s.Company,
		s.Email,
		s.Role,
		s.Coords,
	}
}
