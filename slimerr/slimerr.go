// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package slimerr defines the error taxonomy shared across the discovery
// pipeline, so callers of the Engine API can distinguish a bad flag from a
// broken archive from a missing jlink without string-matching messages.
package slimerr

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// Kind classifies where in the pipeline an error originated.
type Kind int

const (
	Unspecified Kind = iota
	Configuration
	Discovery
	Index
	Scanner
	ExternalTool
	ModuleResolution
	Build
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Discovery:
		return "discovery"
	case Index:
		return "index"
	case Scanner:
		return "scanner"
	case ExternalTool:
		return "external_tool"
	case ModuleResolution:
		return "module_resolution"
	case Build:
		return "build"
	default:
		return "unspecified"
	}
}

// SlimJreError wraps an underlying error with the pipeline stage it came
// from and, optionally, the archive path being processed.
type SlimJreError struct {
	Kind    Kind
	Archive string // archive path, if the error is archive-scoped; empty otherwise
	Err     error
}

func (e *SlimJreError) Error() string {
	if e.Archive != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Archive, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SlimJreError) Unwrap() error { return e.Err }

// New builds a SlimJreError of kind wrapping err. Returns nil if err is nil,
// so callers can write `return slimerr.New(Discovery, "", err)` unconditionally.
func New(kind Kind, archive string, err error) error {
	if err == nil {
		return nil
	}
	return &SlimJreError{Kind: kind, Archive: archive, Err: err}
}

// Newf is New with a formatted message instead of a wrapped error.
func Newf(kind Kind, archive, format string, args ...any) error {
	return New(kind, archive, fmt.Errorf(format, args...))
}

// KindOf reports the Kind of err if it (or something it wraps) is a
// SlimJreError, and Unspecified otherwise.
func KindOf(err error) Kind {
	var se *SlimJreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unspecified
}

// Combine merges per-archive or per-scanner errors into one multierr error,
// dropping nils. A nil result means every operation succeeded.
func Combine(errs ...error) error {
	return multierr.Combine(errs...)
}

// Append is multierr.Append, re-exported so callers don't need a second
// import for the common "accumulate errors across a loop" idiom.
func Append(left, right error) error {
	return multierr.Append(left, right)
}

// Errors splits a combined error back into its components, for callers
// (like the CLI) that want to report each failure on its own line.
func Errors(err error) []error {
	return multierr.Errors(err)
}
