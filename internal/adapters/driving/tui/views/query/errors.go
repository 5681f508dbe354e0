package query

import "errors"

// Error definitions for the query view.
var (
	// ErrNoRetrievalService indicates that no retrieval service was provided.
	ErrNoRetrievalService = errors.New("retrieval service is required")

	// ErrNoAnswerService indicates that answering is not configured.
	ErrNoAnswerService = errors.New("answering is not configured")
)
