package common

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Response is the transport-neutral reply of the submission endpoint.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type messageBody struct {
	Message string `json:"message"`
}

// CORSHeaders returns the headers present on every response.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Content-Type":                 "application/json",
	}
}

// Message builds a response whose body is {"message": msg}.
func Message(status int, msg string) Response {
	body, err := json.Marshal(messageBody{Message: msg})
	if err != nil {
		body = []byte(`{"message":""}`)
	}
	return Response{
		StatusCode: status,
		Headers:    CORSHeaders(),
		Body:       string(body),
	}
}

// Preflight answers CORS preflight requests.
func Preflight() Response {
	headers := CORSHeaders()
	headers["Access-Control-Allow-Methods"] = "POST,OPTIONS"
	return Response{
		StatusCode: http.StatusNoContent,
		Headers:    headers,
	}
}

// WriteResponse copies resp onto w.
func WriteResponse(logger logrus.FieldLogger, w http.ResponseWriter, resp Response) {
	header := w.Header()
	for key, value := range resp.Headers {
		header.Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body == "" {
		return
	}
	if _, err := w.Write([]byte(resp.Body)); err != nil && logger != nil {
		logger.WithError(err).Warn("failed to write response body")
	}
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger logrus.FieldLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.WithError(err).Warn("failed to encode JSON response")
	}
}
