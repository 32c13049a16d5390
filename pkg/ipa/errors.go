package ipa

import (
	"errors"
	"fmt"
)

var (
	// ErrBundleNotFound is returned when Payload/ holds no .app directory
	ErrBundleNotFound = errors.New("no .app bundle found in Payload")
	// ErrAmbiguousBundle is returned when Payload/ holds more than one .app directory
	ErrAmbiguousBundle = errors.New("more than one .app bundle found in Payload")
	// ErrMissingField is returned by BasicInfo when Info.plist lacks a required key
	ErrMissingField = errors.New("missing required Info.plist field")
)

// ExtractionError is returned when a required extraction step fails.
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract: %s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
