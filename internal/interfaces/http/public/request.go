package public

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sngm3741/makoto-club-services/intake/internal/submission/application"
)

// DefaultHoneypotField is the hidden form field that only bots fill in.
const DefaultHoneypotField = "website"

// ErrInvalidJSON reports a payload that is not a JSON object.
var ErrInvalidJSON = errors.New("invalid JSON")

// decodeSubmission parses the payload. The body must be a JSON object.
func decodeSubmission(body []byte, honeypotField string) (application.RecordSubmissionCommand, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return application.RecordSubmissionCommand{}, fmt.Errorf("%w: empty body", ErrInvalidJSON)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return application.RecordSubmissionCommand{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if payload == nil {
		return application.RecordSubmissionCommand{}, fmt.Errorf("%w: payload is null", ErrInvalidJSON)
	}

	return application.RecordSubmissionCommand{
		Company:  fieldString(payload["company"]),
		Email:    fieldString(payload["email"]),
		Role:     fieldString(payload["role"]),
		Coords:   fieldString(payload["coords"]),
		Honeypot: fieldString(payload[honeypotField]),
	}, nil
}

// fieldString returns string values as-is, "" for absent or null values and
// the compact JSON text of anything else.
func fieldString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
