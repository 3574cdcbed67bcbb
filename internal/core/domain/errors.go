package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid and must not be retried
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstreamUnavailable indicates a network collaborator failed or answered with an unexpected shape
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCredentialInvalid indicates a drive credential could not be refreshed and needs re-authorization
	ErrCredentialInvalid = errors.New("credential invalid")

	// ErrPartialBatchFailure indicates some items of a batch failed while the rest completed
	ErrPartialBatchFailure = errors.New("partial batch failure")
)

// Refinements of the taxonomy above. errors.Is matches both the refinement and its parent.
var (
	ErrInvalidQuery      = fmt.Errorf("%w: query is empty", ErrInvalidInput)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrInvalidInput)

	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthorized)

	ErrEmbeddingUnavailable   = fmt.Errorf("%w: embedding service", ErrUpstreamUnavailable)
	ErrVectorStoreUnavailable = fmt.Errorf("%w: vector store", ErrUpstreamUnavailable)
	ErrGenerationUnavailable  = fmt.Errorf("%w: answer generation", ErrUpstreamUnavailable)
	ErrDriveUnavailable       = fmt.Errorf("%w: drive", ErrUpstreamUnavailable)
	ErrBlobUnavailable        = fmt.Errorf("%w: blob storage", ErrUpstreamUnavailable)
)
