// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error rendering: a curated catalog of
// known failure modes rendered as Markdown, plus the ActionableError type for
// attaching operations, resources, and fix suggestions to errors.
package issue
