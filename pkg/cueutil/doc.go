// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities: file size bounds
// and error formatting with JSON-path prefixes for clear validation
// messages.
//
// The config package uses these helpers when validating config.cue against
// its embedded schema.
package cueutil
