package models

import (
	"errors"
	"fmt"
)

// SkipReason tags why a URL was dropped at a pipeline stage.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipInvalidURL
	SkipNetworkFailure
	SkipUnsupportedContentType
	SkipParseFailure
	SkipExtractionTooShort
)

func (r SkipReason) String() string {
	switch r {
	case SkipInvalidURL:
		return "invalid_url"
	case SkipNetworkFailure:
		return "network_failure"
	case SkipUnsupportedContentType:
		return "unsupported_content_type"
	case SkipParseFailure:
		return "parse_failure"
	case SkipExtractionTooShort:
		return "extraction_too_short"
	default:
		return "none"
	}
}

var (
	ErrInvalidURL             = errors.New("invalid url")
	ErrNetworkFailure         = errors.New("network failure")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrParseFailure           = errors.New("parse failure")
	ErrExtractionTooShort     = errors.New("extracted content too short")
)

// sentinel maps each reason to the error matched by errors.Is.
func (r SkipReason) sentinel() error {
	switch r {
	case SkipInvalidURL:
		return ErrInvalidURL
	case SkipNetworkFailure:
		return ErrNetworkFailure
	case SkipUnsupportedContentType:
		return ErrUnsupportedContentType
	case SkipParseFailure:
		return ErrParseFailure
	case SkipExtractionTooShort:
		return ErrExtractionTooShort
	default:
		return nil
	}
}

// StageError is the failure payload of a fetch, parse or extract stage.
type StageError struct {
	Reason SkipReason
	URL    string
	Err    error
}

func NewStageError(reason SkipReason, url string, err error) *StageError {
	return &StageError{Reason: reason, URL: url, Err: err}
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.URL)
	}
	return fmt.Sprintf("%s: %s: %v", e.Reason, e.URL, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	s := e.Reason.sentinel()
	return s != nil && s == target
}

// ReasonOf returns the skip reason carried by err, or SkipNone.
func ReasonOf(err error) SkipReason {
	var se *StageError
	if errors.As(err, &se) {
		return se.Reason
	}
	return SkipNone
}
