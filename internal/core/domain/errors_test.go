package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrAlreadyExists", ErrAlreadyExists, "already exists"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable, "upstream unavailable"},
		{"ErrCredentialInvalid", ErrCredentialInvalid, "credential invalid"},
		{"ErrPartialBatchFailure", ErrPartialBatchFailure, "partial batch failure"},
		{"ErrInvalidQuery", ErrInvalidQuery, "invalid input: query is empty"},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable, "upstream unavailable: embedding service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrUpstreamUnavailable,
		ErrCredentialInvalid,
		ErrPartialBatchFailure,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestErrorRefinements(t *testing.T) {
	tests := []struct {
		err    error
		parent error
	}{
		{ErrInvalidQuery, ErrInvalidInput},
		{ErrUnsupportedFormat, ErrInvalidInput},
		{ErrEmbeddingUnavailable, ErrUpstreamUnavailable},
		{ErrVectorStoreUnavailable, ErrUpstreamUnavailable},
		{ErrGenerationUnavailable, ErrUpstreamUnavailable},
		{ErrDriveUnavailable, ErrUpstreamUnavailable},
		{ErrBlobUnavailable, ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if !errors.Is(tt.err, tt.parent) {
				t.Errorf("%v should match %v", tt.err, tt.parent)
			}
			wrapped := fmt.Errorf("adapter: %w", tt.err)
			if !errors.Is(wrapped, tt.err) || !errors.Is(wrapped, tt.parent) {
				t.Errorf("wrapped %v lost its chain", tt.err)
			}
		})
	}

	if errors.Is(ErrEmbeddingUnavailable, ErrGenerationUnavailable) {
		t.Error("sibling refinements should not match each other")
	}
}
