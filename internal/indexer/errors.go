package indexer

import "errors"

var (
	// ErrFetchFailed means the repository could not be cloned.
	ErrFetchFailed = errors.New("failed to fetch repository")

	// ErrScratchDir means no temporary working directory could be created.
	ErrScratchDir = errors.New("failed to create scratch directory")
)
