package contract

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrIndexUnavailable marks a vector store that is missing its table or
	// the vector extension.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
