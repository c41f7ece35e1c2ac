package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for curator operations
var (
	// ErrServerOffline indicates the curator API is unreachable
	ErrServerOffline = errors.New("curator API is unreachable")

	// ErrTorrentNotFound indicates the backend has no torrent with that id
	ErrTorrentNotFound = errors.New("torrent not found")

	// ErrMalformedResponse indicates a response body that could not be decoded
	ErrMalformedResponse = errors.New("malformed response from curator API")

	// ErrInvalidStatus indicates a status outside pending/approved/rejected
	ErrInvalidStatus = errors.New("invalid status")
)

// APIError is a non-success HTTP response from the curator API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrTorrentNotFound) match 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrTorrentNotFound && e.StatusCode == http.StatusNotFound
}

// Link errors returned by the launcher
var (
	// ErrNoLink indicates the backend sent no link for the torrent
	ErrNoLink = errors.New("torrent has no link")

	// ErrUnsupportedLink indicates a link scheme the launcher will not hand to the OS
	ErrUnsupportedLink = errors.New("unsupported link")
)
