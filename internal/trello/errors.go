package trello

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rpggio/boardsum/internal/repository"
)

// APIError is returned for non-2xx responses from the Trello API.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("trello: %s %s: HTTP %d: %s", err.Method, err.Path, err.StatusCode, err.Message)
}

// Unwrap maps 404 responses onto repository.ErrNotFound so callers can
// treat both board stores alike.
func (err *APIError) Unwrap() error {
	switch err.StatusCode {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusBadRequest:
		return repository.ErrInvalidInput
	default:
		return nil
	}
}

// IsNotFound reports whether err is a Trello 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether err is a Trello 429 response.
func IsRateLimited(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusTooManyRequests
}

// IsTransient reports whether retrying err may succeed: rate limits,
// server errors and transport failures. Other API errors are final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiError *APIError
	if !errors.As(err, &apiError) {
		return true
	}
	return apiError.StatusCode == http.StatusTooManyRequests ||
		apiError.StatusCode == http.StatusRequestTimeout ||
		apiError.StatusCode >= 500
}

// parseAPIError builds an APIError from a response body. Trello answers
// errors with either plain text or {"message": "..."}.
func parseAPIError(method, path string, status int, body []byte) *APIError {
	message := strings.TrimSpace(string(body))
	if strings.HasPrefix(message, "{") {
		var parsed struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			switch {
			case parsed.Message != "":
				message = parsed.Message
			case parsed.Error != "":
				message = parsed.Error
			}
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: message, Method: method, Path: path}
}
