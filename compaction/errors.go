package compaction

import "errors"

var (
	// ErrSummarizationFailed is returned when the summarizer call fails or
	// produces an empty result.
	ErrSummarizationFailed = errors.New("summarization failed")

	// ErrInvalidConfig is returned when compaction configuration is invalid.
	ErrInvalidConfig = errors.New("invalid compaction configuration")
)
