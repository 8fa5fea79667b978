package common

const (
	// MaxRequestBody limits JSON request bodies on the local HTTP server.
	MaxRequestBody = 1 << 20
	// MessageOK is returned for accepted (and silently discarded) submissions.
	MessageOK = "ok"
	// MessageInvalidJSON is returned when the payload is not a JSON object.
	MessageInvalidJSON = "Invalid JSON"
)
