// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidates is the sentinel wrapped by NoCandidatesError.
	ErrNoCandidates = errors.New("no matching versions")

	// ErrNoImageTag is the sentinel wrapped by NoImageTagError.
	ErrNoImageTag = errors.New("no matching image tag")
)

// NoCandidatesError is returned when the filter chain empties the candidate
// set. It carries the constraints for the error message; there is no retry
// or partial result.
type NoCandidatesError struct {
	Constraints Constraints
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no versions found for python %s, torch %s, cuda %s",
		orLatest(e.Constraints.Python), orLatest(e.Constraints.Library), orLatest(e.Constraints.Accelerator))
}

func (e *NoCandidatesError) Unwrap() error {
	return ErrNoCandidates
}

// NoImageTagError is returned when the tag registry has no development base
// image for the resolved accelerator version. Fatal; no fallback image is
// substituted.
type NoImageTagError struct {
	AcceleratorVersion string
}

func (e *NoImageTagError) Error() string {
	return fmt.Sprintf("no devel base image tag found for cuda %s", e.AcceleratorVersion)
}

func (e *NoImageTagError) Unwrap() error {
	return ErrNoImageTag
}

// orLatest renders an empty constraint as "latest" for error messages.
func orLatest(v string) string {
	if v == "" {
		return "latest"
	}
	return v
}
